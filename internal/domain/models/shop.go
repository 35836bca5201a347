package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ExpenseType partitions expenses into capital-neutral stock purchases and
// operating costs.
type ExpenseType string

const (
	ExpenseStockPurchase ExpenseType = "Stock Purchase"
	ExpenseOperating     ExpenseType = "Operating"
)

// StockCategory is the breakdown key used for every stock purchase.
const StockCategory = "Stock"

// LowStockThreshold flags inventory items at or below this quantity.
const LowStockThreshold = 5

// Sale captures a single sales transaction. Amounts are in the canonical unit.
type Sale struct {
	ID        string          `json:"id"`
	Date      Date            `json:"date"`
	ItemName  string          `json:"itemName"`
	Quantity  int             `json:"quantity"`
	CostPrice decimal.Decimal `json:"costPrice"`
	SalePrice decimal.Decimal `json:"salePrice"`
	Profit    decimal.Decimal `json:"profit"`
}

// Revenue returns salePrice × quantity.
func (s Sale) Revenue() decimal.Decimal {
	return s.SalePrice.Mul(decimal.NewFromInt(int64(s.Quantity)))
}

// SaleProfit computes (salePrice − costPrice) × quantity.
func SaleProfit(costPrice, salePrice decimal.Decimal, quantity int) decimal.Decimal {
	return salePrice.Sub(costPrice).Mul(decimal.NewFromInt(int64(quantity)))
}

// SaleInput is the user-supplied part of a Sale; id and profit are derived.
type SaleInput struct {
	Date      Date            `json:"date"`
	ItemName  string          `json:"itemName"`
	Quantity  int             `json:"quantity"`
	CostPrice decimal.Decimal `json:"costPrice"`
	SalePrice decimal.Decimal `json:"salePrice"`
}

// Validate enforces the sale form rules.
func (in SaleInput) Validate() error {
	if err := in.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(in.ItemName) == "" {
		return ErrEmptyItemName
	}
	if in.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if in.CostPrice.IsNegative() || in.SalePrice.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

// ToSale materializes a Sale with the given id and a freshly computed profit.
func (in SaleInput) ToSale(id string) Sale {
	return Sale{
		ID:        id,
		Date:      in.Date,
		ItemName:  strings.TrimSpace(in.ItemName),
		Quantity:  in.Quantity,
		CostPrice: in.CostPrice,
		SalePrice: in.SalePrice,
		Profit:    SaleProfit(in.CostPrice, in.SalePrice, in.Quantity),
	}
}

// Expense captures money leaving the till.
type Expense struct {
	ID          string          `json:"id"`
	Date        Date            `json:"date"`
	Type        ExpenseType     `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Category returns the breakdown key: "Stock" for stock purchases, otherwise the description.
func (e Expense) Category() string {
	if e.Type == ExpenseStockPurchase {
		return StockCategory
	}
	return e.Description
}

// ExpenseInput is the user-supplied part of an Expense.
type ExpenseInput struct {
	Date        Date            `json:"date"`
	Type        ExpenseType     `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Validate enforces the expense form rules.
func (in ExpenseInput) Validate() error {
	if err := in.Date.Validate(); err != nil {
		return err
	}
	switch in.Type {
	case ExpenseStockPurchase, ExpenseOperating:
	default:
		return ErrInvalidExpenseType
	}
	if strings.TrimSpace(in.Description) == "" {
		return ErrEmptyDescription
	}
	if !in.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// ToExpense materializes an Expense with the given id.
func (in ExpenseInput) ToExpense(id string) Expense {
	return Expense{
		ID:          id,
		Date:        in.Date,
		Type:        in.Type,
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
	}
}

// InventoryItem is a stocked product.
type InventoryItem struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	CostPrice    decimal.Decimal `json:"costPrice"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
}

// ProfitPerUnit is sellingPrice − costPrice. Display only.
func (i InventoryItem) ProfitPerUnit() decimal.Decimal {
	return i.SellingPrice.Sub(i.CostPrice)
}

// LowStock reports whether the item is at or below LowStockThreshold.
func (i InventoryItem) LowStock() bool {
	return i.Quantity <= LowStockThreshold
}

// InventoryInput is the user-supplied part of an InventoryItem.
type InventoryInput struct {
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	CostPrice    decimal.Decimal `json:"costPrice"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
}

// Validate enforces the inventory form rules.
func (in InventoryInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrEmptyName
	}
	if in.Quantity < 0 {
		return ErrNegativeQuantity
	}
	if in.CostPrice.IsNegative() || in.SellingPrice.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

// ToItem materializes an InventoryItem with the given id.
func (in InventoryInput) ToItem(id string) InventoryItem {
	return InventoryItem{
		ID:           id,
		Name:         strings.TrimSpace(in.Name),
		Quantity:     in.Quantity,
		CostPrice:    in.CostPrice,
		SellingPrice: in.SellingPrice,
	}
}

// InitialCapital is the baseline every capital computation starts from.
type InitialCapital struct {
	Cash  decimal.Decimal `json:"cash"`
	Stock decimal.Decimal `json:"stock"`
}

// DefaultInitialCapital is used when nothing has been stored yet or the stored value is unreadable.
func DefaultInitialCapital() InitialCapital {
	return InitialCapital{Cash: decimal.NewFromInt(5000), Stock: decimal.NewFromInt(2000)}
}

// Total returns cash + stock.
func (c InitialCapital) Total() decimal.Decimal {
	return c.Cash.Add(c.Stock)
}

// Validate rejects negative baselines.
func (c InitialCapital) Validate() error {
	if c.Cash.IsNegative() || c.Stock.IsNegative() {
		return ErrNegativeCapital
	}
	return nil
}

// Snapshot is an immutable copy of the ledger handed to the aggregation engine.
type Snapshot struct {
	Sales          []Sale
	Expenses       []Expense
	Inventory      []InventoryItem
	InitialCapital InitialCapital
}
