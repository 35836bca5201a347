package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopcapital/internal/currency"
	"github.com/mamadbah2/shopcapital/internal/domain/models"
	"github.com/mamadbah2/shopcapital/internal/ledger"
	"github.com/mamadbah2/shopcapital/internal/service/metrics"
	"github.com/mamadbah2/shopcapital/internal/service/reporting"
)

// Ledger is the record store behind the REST API.
type Ledger interface {
	Snapshot() models.Snapshot
	AddSale(ctx context.Context, in models.SaleInput, inventoryItemID string) (models.Sale, error)
	UpdateSale(ctx context.Context, id string, in models.SaleInput) (models.Sale, error)
	DeleteSale(ctx context.Context, id string) error
	AddExpense(ctx context.Context, in models.ExpenseInput) (models.Expense, error)
	UpdateExpense(ctx context.Context, id string, in models.ExpenseInput) (models.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	AddInventoryItem(ctx context.Context, in models.InventoryInput) (models.InventoryItem, error)
	UpdateInventoryItem(ctx context.Context, id string, in models.InventoryInput) (models.InventoryItem, error)
	DeleteInventoryItem(ctx context.Context, id string) error
	InitialCapital() models.InitialCapital
	SetInitialCapital(ctx context.Context, capital models.InitialCapital) (models.InitialCapital, error)
}

// ShopHandler serves the dashboard, reports and record management endpoints.
// Amounts cross the HTTP boundary in the display currency, chosen per request
// with ?currency= and defaulting to the configured one.
type ShopHandler struct {
	ledger    Ledger
	engine    *metrics.Engine
	reporting *reporting.Service
	rate      decimal.Decimal
	fallback  *currency.Converter
	now       func() time.Time
	logger    *zap.Logger
}

// NewShopHandler constructs the REST handler.
func NewShopHandler(l Ledger, engine *metrics.Engine, reportingSvc *reporting.Service, conv *currency.Converter, location *time.Location, logger *zap.Logger) *ShopHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	return &ShopHandler{
		ledger:    l,
		engine:    engine,
		reporting: reportingSvc,
		rate:      conv.Rate(),
		fallback:  conv,
		now:       func() time.Time { return time.Now().In(location) },
		logger:    logger,
	}
}

// RegisterRoutes mounts every shop endpoint under the group.
func (h *ShopHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", h.Dashboard)
	rg.GET("/reports/monthly", h.MonthlyReports)

	sales := rg.Group("/sales")
	sales.GET("", h.ListSales)
	sales.POST("", h.CreateSale)
	sales.PUT("/:id", h.UpdateSale)
	sales.DELETE("/:id", h.DeleteSale)

	expenses := rg.Group("/expenses")
	expenses.GET("", h.ListExpenses)
	expenses.POST("", h.CreateExpense)
	expenses.PUT("/:id", h.UpdateExpense)
	expenses.DELETE("/:id", h.DeleteExpense)

	inventory := rg.Group("/inventory")
	inventory.GET("", h.ListInventory)
	inventory.POST("", h.CreateInventoryItem)
	inventory.PUT("/:id", h.UpdateInventoryItem)
	inventory.DELETE("/:id", h.DeleteInventoryItem)

	rg.GET("/settings/capital", h.GetCapital)
	rg.PUT("/settings/capital", h.PutCapital)
}

// converter resolves the request's display currency.
func (h *ShopHandler) converter(c *gin.Context) (*currency.Converter, bool) {
	raw := c.Query("currency")
	if raw == "" {
		return h.fallback, true
	}
	code, err := currency.ParseCode(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	conv, err := currency.NewConverter(code, h.rate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return conv, true
}

type dashboardResponse struct {
	Currency currency.Code `json:"currency"`
	Symbol   string        `json:"symbol"`
	models.DashboardMetrics
	LowStockItems []string `json:"lowStockItems"`
}

// Dashboard recomputes every metric from a fresh snapshot.
func (h *ShopHandler) Dashboard(c *gin.Context) {
	conv, ok := h.converter(c)
	if !ok {
		return
	}

	snap := h.ledger.Snapshot()
	m := h.engine.Compute(snap, h.now())

	low := reporting.LowStockItems(snap.Inventory)
	if low == nil {
		low = []string{}
	}

	c.JSON(http.StatusOK, dashboardResponse{
		Currency:         conv.Code(),
		Symbol:           conv.Symbol(),
		DashboardMetrics: conv.Metrics(m),
		LowStockItems:    low,
	})
}

// MonthlyReports lists one row per month with activity, newest first.
func (h *ShopHandler) MonthlyReports(c *gin.Context) {
	conv, ok := h.converter(c)
	if !ok {
		return
	}

	rows := h.reporting.MonthlyReports(h.ledger.Snapshot())
	c.JSON(http.StatusOK, gin.H{"currency": conv.Code(), "reports": conv.Reports(rows)})
}

type capitalRequest struct {
	Cash  decimal.Decimal `json:"cash"`
	Stock decimal.Decimal `json:"stock"`
}

// GetCapital returns the starting capital baseline.
func (h *ShopHandler) GetCapital(c *gin.Context) {
	conv, ok := h.converter(c)
	if !ok {
		return
	}
	capital := h.ledger.InitialCapital()
	c.JSON(http.StatusOK, models.InitialCapital{
		Cash:  conv.ToSelected(capital.Cash),
		Stock: conv.ToSelected(capital.Stock),
	})
}

// PutCapital replaces the starting capital baseline.
func (h *ShopHandler) PutCapital(c *gin.Context) {
	conv, ok := h.converter(c)
	if !ok {
		return
	}

	var req capitalRequest
	if !h.bind(c, &req) {
		return
	}

	capital, err := h.ledger.SetInitialCapital(c.Request.Context(), models.InitialCapital{
		Cash:  conv.FromSelected(req.Cash),
		Stock: conv.FromSelected(req.Stock),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.InitialCapital{
		Cash:  conv.ToSelected(capital.Cash),
		Stock: conv.ToSelected(capital.Stock),
	})
}

func (h *ShopHandler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.logger.Debug("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func (h *ShopHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrDuplicateID):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
