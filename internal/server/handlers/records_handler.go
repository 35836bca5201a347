package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/shopcapital/internal/currency"
	"github.com/mamadbah2/shopcapital/internal/domain/models"
)

type saleRequest struct {
	models.SaleInput
	InventoryItemID string `json:"inventoryItemId"`
}

func saleIn(conv *currency.Converter, in models.SaleInput) models.SaleInput {
	in.CostPrice = conv.FromSelected(in.CostPrice)
	in.SalePrice = conv.FromSelected(in.SalePrice)
	return in
}

func saleOut(conv *currency.Converter, s models.Sale) models.Sale {
	s.CostPrice = conv.ToSelected(s.CostPrice)
	s.SalePrice = conv.ToSelected(s.SalePrice)
	s.Profit = conv.ToSelected(s.Profit)
	return s
}

func expenseOut(conv *currency.Converter, e models.Expense) models.Expense {
	e.Amount = conv.ToSelected(e.Amount)
	return e
}

type inventoryView struct {
	models.InventoryItem
	ProfitPerUnit string `json:"profitPerUnit"`
	LowStock      bool   `json:"lowStock"`
}

func inventoryOut(conv *currency.Converter, i models.InventoryItem) inventoryView {
	i.CostPrice = conv.ToSelected(i.CostPrice)
	i.SellingPrice = conv.ToSelected(i.SellingPrice)
	return inventoryView{
		InventoryItem: i,
		ProfitPerUnit: i.ProfitPerUnit().String(),
		LowStock:      i.LowStock(),
	}
}

// ListSales returns every sale newest first.
func (h *ShopHandler) ListSales(c *gin.Context) {
	conv, ok := h.converter(c)
	if !ok {
		return
	}
	sales := h.ledger.Snapshot().Sales
	out := make([]models.Sale, len(sales))
	for i, s := range sales {
		out[i] = saleOut(conv, s)
	}
	c.JSON(http.StatusOK, out)
}

// CreateSale records a sale and optionally decrements the referenced inventory item.
func (h *ShopHandler) CreateSale(c *gin.Context) {
	conv, ok := h.converter(c)
	if !ok {
		return
	}
	var req saleRequest
	if !h.bind(c, &req) {
		return
	}

	sale, err := h.ledger.AddSale(c.Request.Context(), saleIn(conv, req.SaleInput), req.InventoryItemID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saleOut(conv, sale))
}

// UpdateSale replaces a sale by id.
func (h *ShopHandler) UpdateSale(c *gin.Context) {
	conv, ok := h.converter(c)
	if !ok {
		return
	}
	var in models.SaleInput
	if !h.bind(c, &in) {
		return
	}

	sale, err := h.ledger.UpdateSale(c.Request.Context(), c.Param("id"), saleIn(conv, in))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saleOut(conv, sale))
}

// DeleteSale removes a sale by id.
func (h *ShopHandler) DeleteSale(c *gin.Context) {
	if err := h.ledger.DeleteSale(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListExpenses returns every expense newest first.
func (h *ShopHandler) ListExpenses(c *gin.Context) {
	conv, ok := h.converter(c)
	if !ok {
		return
	}
	expenses := h.ledger.Snapshot().Expenses
	out := make([]models.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = expenseOut(conv, e)
	}
	c.JSON(http.StatusOK, out)
}

// CreateExpense records an expense.
func (h *ShopHandler) CreateExpense(c *gin.Context) {
	conv, ok := h.converter(c)
	if !ok {
		return
	}
	var in models.ExpenseInput
	if !h.bind(c, &in) {
		return
	}
	in.Amount = conv.FromSelected(in.Amount)

	expense, err := h.ledger.AddExpense(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, expenseOut(conv, expense))
}

// UpdateExpense replaces an expense by id.
func (h *ShopHandler) UpdateExpense(c *gin.Context) {
	conv, ok := h.converter(c)
	if !ok {
		return
	}
	var in models.ExpenseInput
	if !h.bind(c, &in) {
		return
	}
	in.Amount = conv.FromSelected(in.Amount)

	expense, err := h.ledger.UpdateExpense(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expenseOut(conv, expense))
}

// DeleteExpense removes an expense by id.
func (h *ShopHandler) DeleteExpense(c *gin.Context) {
	if err := h.ledger.DeleteExpense(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListInventory returns every stocked item with its per-unit profit and low-stock flag.
func (h *ShopHandler) ListInventory(c *gin.Context) {
	conv, ok := h.converter(c)
	if !ok {
		return
	}
	items := h.ledger.Snapshot().Inventory
	out := make([]inventoryView, len(items))
	for i, item := range items {
		out[i] = inventoryOut(conv, item)
	}
	c.JSON(http.StatusOK, out)
}

// CreateInventoryItem stocks a new product.
func (h *ShopHandler) CreateInventoryItem(c *gin.Context) {
	conv, ok := h.converter(c)
	if !ok {
		return
	}
	var in models.InventoryInput
	if !h.bind(c, &in) {
		return
	}
	in.CostPrice = conv.FromSelected(in.CostPrice)
	in.SellingPrice = conv.FromSelected(in.SellingPrice)

	item, err := h.ledger.AddInventoryItem(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inventoryOut(conv, item))
}

// UpdateInventoryItem replaces an item by id.
func (h *ShopHandler) UpdateInventoryItem(c *gin.Context) {
	conv, ok := h.converter(c)
	if !ok {
		return
	}
	var in models.InventoryInput
	if !h.bind(c, &in) {
		return
	}
	in.CostPrice = conv.FromSelected(in.CostPrice)
	in.SellingPrice = conv.FromSelected(in.SellingPrice)

	item, err := h.ledger.UpdateInventoryItem(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inventoryOut(conv, item))
}

// DeleteInventoryItem removes an item by id.
func (h *ShopHandler) DeleteInventoryItem(c *gin.Context) {
	if err := h.ledger.DeleteInventoryItem(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
