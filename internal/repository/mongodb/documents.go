package mongodb

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/shopcapital/internal/domain/models"
)

type saleDocument struct {
	ID        string               `bson:"_id"`
	Date      string               `bson:"date"`
	ItemName  string               `bson:"item_name"`
	Quantity  int                  `bson:"quantity"`
	CostPrice primitive.Decimal128 `bson:"cost_price"`
	SalePrice primitive.Decimal128 `bson:"sale_price"`
	Profit    primitive.Decimal128 `bson:"profit"`
}

type expenseDocument struct {
	ID          string               `bson:"_id"`
	Date        string               `bson:"date"`
	Type        string               `bson:"type"`
	Description string               `bson:"description"`
	Amount      primitive.Decimal128 `bson:"amount"`
}

type inventoryDocument struct {
	ID           string               `bson:"_id"`
	Name         string               `bson:"name"`
	Quantity     int                  `bson:"quantity"`
	CostPrice    primitive.Decimal128 `bson:"cost_price"`
	SellingPrice primitive.Decimal128 `bson:"selling_price"`
}

type capitalDocument struct {
	ID    string               `bson:"_id"`
	Cash  primitive.Decimal128 `bson:"cash"`
	Stock primitive.Decimal128 `bson:"stock"`
}

type dailyReportDocument struct {
	Date          time.Time            `bson:"date"`
	SalesAmount   primitive.Decimal128 `bson:"sales_amount"`
	Expenses      primitive.Decimal128 `bson:"expenses"`
	Profit        primitive.Decimal128 `bson:"profit"`
	CurrentCash   primitive.Decimal128 `bson:"current_cash"`
	StockValue    primitive.Decimal128 `bson:"stock_value"`
	TotalCapital  primitive.Decimal128 `bson:"total_capital"`
	GrowthPercent primitive.Decimal128 `bson:"growth_percent"`
	SalesCount    int                  `bson:"sales_count"`
	LowStockItems []string             `bson:"low_stock_items"`
	CreatedAt     time.Time            `bson:"created_at"`
}

// ErrAmountPrecision is returned for amounts Decimal128 cannot hold exactly
// (more than 34 significant digits or out of exponent range).
var ErrAmountPrecision = fmt.Errorf("%w: amount exceeds storable precision", models.ErrValidation)

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("%w: %s", ErrAmountPrecision, d.String())
	}
	return v, nil
}

// decimalEncoder converts a run of amounts and keeps the first failure.
type decimalEncoder struct {
	err error
}

func (e *decimalEncoder) encode(field string, d decimal.Decimal) primitive.Decimal128 {
	if e.err != nil {
		return primitive.Decimal128{}
	}
	v, err := toDecimal128(d)
	if err != nil {
		e.err = fmt.Errorf("%s: %w", field, err)
	}
	return v
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse decimal %q: %w", v.String(), err)
	}
	return d, nil
}

func newSaleDocument(s models.Sale) (saleDocument, error) {
	var enc decimalEncoder
	doc := saleDocument{
		ID:        s.ID,
		Date:      s.Date.String(),
		ItemName:  s.ItemName,
		Quantity:  s.Quantity,
		CostPrice: enc.encode("cost price", s.CostPrice),
		SalePrice: enc.encode("sale price", s.SalePrice),
		Profit:    enc.encode("profit", s.Profit),
	}
	if enc.err != nil {
		return saleDocument{}, fmt.Errorf("sale %s %w", s.ID, enc.err)
	}
	return doc, nil
}

// toModel rebuilds the sale. Profit is recomputed so a stale stored value can
// never disagree with the prices.
func (d saleDocument) toModel() (models.Sale, error) {
	date, err := models.ParseDate(d.Date)
	if err != nil {
		return models.Sale{}, fmt.Errorf("sale %s: %w", d.ID, err)
	}
	cost, err := fromDecimal128(d.CostPrice)
	if err != nil {
		return models.Sale{}, fmt.Errorf("sale %s cost: %w", d.ID, err)
	}
	price, err := fromDecimal128(d.SalePrice)
	if err != nil {
		return models.Sale{}, fmt.Errorf("sale %s price: %w", d.ID, err)
	}
	return models.SaleInput{
		Date:      date,
		ItemName:  d.ItemName,
		Quantity:  d.Quantity,
		CostPrice: cost,
		SalePrice: price,
	}.ToSale(d.ID), nil
}

func newExpenseDocument(e models.Expense) (expenseDocument, error) {
	amount, err := toDecimal128(e.Amount)
	if err != nil {
		return expenseDocument{}, fmt.Errorf("expense %s amount: %w", e.ID, err)
	}
	return expenseDocument{
		ID:          e.ID,
		Date:        e.Date.String(),
		Type:        string(e.Type),
		Description: e.Description,
		Amount:      amount,
	}, nil
}

func (d expenseDocument) toModel() (models.Expense, error) {
	date, err := models.ParseDate(d.Date)
	if err != nil {
		return models.Expense{}, fmt.Errorf("expense %s: %w", d.ID, err)
	}
	amount, err := fromDecimal128(d.Amount)
	if err != nil {
		return models.Expense{}, fmt.Errorf("expense %s amount: %w", d.ID, err)
	}
	return models.Expense{
		ID:          d.ID,
		Date:        date,
		Type:        models.ExpenseType(d.Type),
		Description: d.Description,
		Amount:      amount,
	}, nil
}

func newInventoryDocument(i models.InventoryItem) (inventoryDocument, error) {
	var enc decimalEncoder
	doc := inventoryDocument{
		ID:           i.ID,
		Name:         i.Name,
		Quantity:     i.Quantity,
		CostPrice:    enc.encode("cost price", i.CostPrice),
		SellingPrice: enc.encode("selling price", i.SellingPrice),
	}
	if enc.err != nil {
		return inventoryDocument{}, fmt.Errorf("inventory %s %w", i.ID, enc.err)
	}
	return doc, nil
}

func (d inventoryDocument) toModel() (models.InventoryItem, error) {
	cost, err := fromDecimal128(d.CostPrice)
	if err != nil {
		return models.InventoryItem{}, fmt.Errorf("inventory %s cost: %w", d.ID, err)
	}
	price, err := fromDecimal128(d.SellingPrice)
	if err != nil {
		return models.InventoryItem{}, fmt.Errorf("inventory %s price: %w", d.ID, err)
	}
	return models.InventoryItem{
		ID:           d.ID,
		Name:         d.Name,
		Quantity:     d.Quantity,
		CostPrice:    cost,
		SellingPrice: price,
	}, nil
}

func newCapitalDocument(c models.InitialCapital) (capitalDocument, error) {
	var enc decimalEncoder
	doc := capitalDocument{
		ID:    initialCapitalKey,
		Cash:  enc.encode("cash", c.Cash),
		Stock: enc.encode("stock", c.Stock),
	}
	if enc.err != nil {
		return capitalDocument{}, fmt.Errorf("initial capital %w", enc.err)
	}
	return doc, nil
}

func (d capitalDocument) toModel() (models.InitialCapital, error) {
	cash, err := fromDecimal128(d.Cash)
	if err != nil {
		return models.InitialCapital{}, fmt.Errorf("initial capital cash: %w", err)
	}
	stock, err := fromDecimal128(d.Stock)
	if err != nil {
		return models.InitialCapital{}, fmt.Errorf("initial capital stock: %w", err)
	}
	return models.InitialCapital{Cash: cash, Stock: stock}, nil
}

func newDailyReportDocument(r models.DailyReport) (dailyReportDocument, error) {
	var enc decimalEncoder
	doc := dailyReportDocument{
		Date:          r.Date,
		SalesAmount:   enc.encode("sales amount", r.SalesAmount),
		Expenses:      enc.encode("expenses", r.Expenses),
		Profit:        enc.encode("profit", r.Profit),
		CurrentCash:   enc.encode("current cash", r.CurrentCash),
		StockValue:    enc.encode("stock value", r.StockValue),
		TotalCapital:  enc.encode("total capital", r.TotalCapital),
		GrowthPercent: enc.encode("growth percent", r.GrowthPercent),
		SalesCount:    r.SalesCount,
		LowStockItems: r.LowStockItems,
		CreatedAt:     r.CreatedAt,
	}
	if enc.err != nil {
		return dailyReportDocument{}, fmt.Errorf("daily report %w", enc.err)
	}
	return doc, nil
}
