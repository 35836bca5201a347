// Package ledger holds the in-memory record of sales, expenses, inventory and
// the starting capital, persisting every mutation through a Store.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopcapital/internal/domain/models"
)

var (
	// ErrNotFound is returned when an update or delete targets an unknown id.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateID is returned when an insert collides with an existing id.
	ErrDuplicateID = errors.New("duplicate id")
)

// Store persists ledger state. Implementations must be safe for concurrent use.
type Store interface {
	Load(ctx context.Context) (models.Snapshot, error)
	SaveSale(ctx context.Context, sale models.Sale) error
	DeleteSale(ctx context.Context, id string) error
	SaveExpense(ctx context.Context, expense models.Expense) error
	DeleteExpense(ctx context.Context, id string) error
	SaveInventoryItem(ctx context.Context, item models.InventoryItem) error
	DeleteInventoryItem(ctx context.Context, id string) error
	SaveInitialCapital(ctx context.Context, capital models.InitialCapital) error
}

// Ledger is the single writer over the shop's records. Sequences are kept
// newest first.
type Ledger struct {
	mu        sync.RWMutex
	store     Store
	logger    *zap.Logger
	newID     func() string
	sales     []models.Sale
	expenses  []models.Expense
	inventory []models.InventoryItem
	capital   models.InitialCapital
}

// New builds an empty ledger with the default starting capital.
func New(store Store, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		store:   store,
		logger:  logger,
		newID:   func() string { return uuid.NewString() },
		capital: models.DefaultInitialCapital(),
	}
}

// Load replaces the in-memory state with the stored one. Unreadable state is
// not fatal: the ledger starts empty with the default capital.
func (l *Ledger) Load(ctx context.Context) {
	snap, err := l.store.Load(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()

	if err != nil {
		l.logger.Warn("stored ledger unreadable, starting empty", zap.Error(err))
		l.sales, l.expenses, l.inventory = nil, nil, nil
		l.capital = models.DefaultInitialCapital()
		return
	}

	l.sales = snap.Sales
	l.expenses = snap.Expenses
	l.inventory = snap.Inventory
	l.capital = snap.InitialCapital
	if l.capital.Validate() != nil {
		l.logger.Warn("stored initial capital invalid, using default")
		l.capital = models.DefaultInitialCapital()
	}

	l.logger.Info("ledger loaded",
		zap.Int("sales", len(l.sales)),
		zap.Int("expenses", len(l.expenses)),
		zap.Int("inventory", len(l.inventory)))
}

// Snapshot returns a deep copy of the current state.
func (l *Ledger) Snapshot() models.Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return models.Snapshot{
		Sales:          append([]models.Sale(nil), l.sales...),
		Expenses:       append([]models.Expense(nil), l.expenses...),
		Inventory:      append([]models.InventoryItem(nil), l.inventory...),
		InitialCapital: l.capital,
	}
}

// Sales returns the sales newest first.
func (l *Ledger) Sales() []models.Sale {
	return l.Snapshot().Sales
}

// Expenses returns the expenses newest first.
func (l *Ledger) Expenses() []models.Expense {
	return l.Snapshot().Expenses
}

// Inventory returns the stocked items newest first.
func (l *Ledger) Inventory() []models.InventoryItem {
	return l.Snapshot().Inventory
}

// InitialCapital returns the current baseline.
func (l *Ledger) InitialCapital() models.InitialCapital {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.capital
}

// AddSale records a sale. When inventoryItemID names a known item its quantity
// is decremented by the sale quantity, possibly below zero. An unknown id is
// logged and ignored.
func (l *Ledger) AddSale(ctx context.Context, in models.SaleInput, inventoryItemID string) (models.Sale, error) {
	if err := in.Validate(); err != nil {
		return models.Sale{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	sale := in.ToSale(l.newID())
	if indexOf(l.sales, sale.ID, saleID) >= 0 {
		return models.Sale{}, fmt.Errorf("add sale %s: %w", sale.ID, ErrDuplicateID)
	}
	if err := l.store.SaveSale(ctx, sale); err != nil {
		return models.Sale{}, fmt.Errorf("save sale: %w", err)
	}
	l.sales = prepend(l.sales, sale)

	if inventoryItemID != "" {
		l.decrementStock(ctx, inventoryItemID, sale.Quantity)
	}

	l.logger.Info("sale recorded",
		zap.String("id", sale.ID),
		zap.String("item", sale.ItemName),
		zap.String("profit", sale.Profit.String()))
	return sale, nil
}

func (l *Ledger) decrementStock(ctx context.Context, itemID string, qty int) {
	idx := indexOf(l.inventory, itemID, itemKey)
	if idx < 0 {
		l.logger.Warn("sale references unknown inventory item", zap.String("inventory_id", itemID))
		return
	}

	item := l.inventory[idx]
	item.Quantity -= qty
	if err := l.store.SaveInventoryItem(ctx, item); err != nil {
		l.logger.Error("failed to persist stock decrement", zap.String("inventory_id", itemID), zap.Error(err))
		return
	}
	l.inventory[idx] = item

	if item.Quantity < 0 {
		l.logger.Warn("inventory oversold", zap.String("item", item.Name), zap.Int("quantity", item.Quantity))
	}
}

// UpdateSale replaces the sale with the given id and recomputes its profit.
func (l *Ledger) UpdateSale(ctx context.Context, id string, in models.SaleInput) (models.Sale, error) {
	if err := in.Validate(); err != nil {
		return models.Sale{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	idx := indexOf(l.sales, id, saleID)
	if idx < 0 {
		return models.Sale{}, fmt.Errorf("update sale %s: %w", id, ErrNotFound)
	}
	sale := in.ToSale(id)
	if err := l.store.SaveSale(ctx, sale); err != nil {
		return models.Sale{}, fmt.Errorf("save sale: %w", err)
	}
	l.sales[idx] = sale
	return sale, nil
}

// DeleteSale removes the sale with the given id. Inventory is not restored.
func (l *Ledger) DeleteSale(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := indexOf(l.sales, id, saleID)
	if idx < 0 {
		return fmt.Errorf("delete sale %s: %w", id, ErrNotFound)
	}
	if err := l.store.DeleteSale(ctx, id); err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	l.sales = remove(l.sales, idx)
	return nil
}

// AddExpense records an expense.
func (l *Ledger) AddExpense(ctx context.Context, in models.ExpenseInput) (models.Expense, error) {
	if err := in.Validate(); err != nil {
		return models.Expense{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	expense := in.ToExpense(l.newID())
	if indexOf(l.expenses, expense.ID, expenseID) >= 0 {
		return models.Expense{}, fmt.Errorf("add expense %s: %w", expense.ID, ErrDuplicateID)
	}
	if err := l.store.SaveExpense(ctx, expense); err != nil {
		return models.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	l.expenses = prepend(l.expenses, expense)

	l.logger.Info("expense recorded",
		zap.String("id", expense.ID),
		zap.String("type", string(expense.Type)),
		zap.String("amount", expense.Amount.String()))
	return expense, nil
}

// UpdateExpense replaces the expense with the given id.
func (l *Ledger) UpdateExpense(ctx context.Context, id string, in models.ExpenseInput) (models.Expense, error) {
	if err := in.Validate(); err != nil {
		return models.Expense{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	idx := indexOf(l.expenses, id, expenseID)
	if idx < 0 {
		return models.Expense{}, fmt.Errorf("update expense %s: %w", id, ErrNotFound)
	}
	expense := in.ToExpense(id)
	if err := l.store.SaveExpense(ctx, expense); err != nil {
		return models.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	l.expenses[idx] = expense
	return expense, nil
}

// DeleteExpense removes the expense with the given id.
func (l *Ledger) DeleteExpense(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := indexOf(l.expenses, id, expenseID)
	if idx < 0 {
		return fmt.Errorf("delete expense %s: %w", id, ErrNotFound)
	}
	if err := l.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	l.expenses = remove(l.expenses, idx)
	return nil
}

// AddInventoryItem stocks a new product.
func (l *Ledger) AddInventoryItem(ctx context.Context, in models.InventoryInput) (models.InventoryItem, error) {
	if err := in.Validate(); err != nil {
		return models.InventoryItem{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	item := in.ToItem(l.newID())
	if indexOf(l.inventory, item.ID, itemKey) >= 0 {
		return models.InventoryItem{}, fmt.Errorf("add inventory item %s: %w", item.ID, ErrDuplicateID)
	}
	if err := l.store.SaveInventoryItem(ctx, item); err != nil {
		return models.InventoryItem{}, fmt.Errorf("save inventory item: %w", err)
	}
	l.inventory = prepend(l.inventory, item)
	return item, nil
}

// UpdateInventoryItem replaces the item with the given id.
func (l *Ledger) UpdateInventoryItem(ctx context.Context, id string, in models.InventoryInput) (models.InventoryItem, error) {
	if err := in.Validate(); err != nil {
		return models.InventoryItem{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	idx := indexOf(l.inventory, id, itemKey)
	if idx < 0 {
		return models.InventoryItem{}, fmt.Errorf("update inventory item %s: %w", id, ErrNotFound)
	}
	item := in.ToItem(id)
	if err := l.store.SaveInventoryItem(ctx, item); err != nil {
		return models.InventoryItem{}, fmt.Errorf("save inventory item: %w", err)
	}
	l.inventory[idx] = item
	return item, nil
}

// DeleteInventoryItem removes the item with the given id.
func (l *Ledger) DeleteInventoryItem(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := indexOf(l.inventory, id, itemKey)
	if idx < 0 {
		return fmt.Errorf("delete inventory item %s: %w", id, ErrNotFound)
	}
	if err := l.store.DeleteInventoryItem(ctx, id); err != nil {
		return fmt.Errorf("delete inventory item: %w", err)
	}
	l.inventory = remove(l.inventory, idx)
	return nil
}

// SetInitialCapital replaces the starting capital baseline.
func (l *Ledger) SetInitialCapital(ctx context.Context, capital models.InitialCapital) (models.InitialCapital, error) {
	if err := capital.Validate(); err != nil {
		return models.InitialCapital{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.SaveInitialCapital(ctx, capital); err != nil {
		return models.InitialCapital{}, fmt.Errorf("save initial capital: %w", err)
	}
	l.capital = capital

	l.logger.Info("initial capital updated",
		zap.String("cash", capital.Cash.String()),
		zap.String("stock", capital.Stock.String()))
	return capital, nil
}

func saleID(s models.Sale) string { return s.ID }

func expenseID(e models.Expense) string { return e.ID }

func itemKey(i models.InventoryItem) string { return i.ID }

func indexOf[T any](items []T, id string, key func(T) string) int {
	for i, item := range items {
		if key(item) == id {
			return i
		}
	}
	return -1
}

func prepend[T any](items []T, item T) []T {
	return append([]T{item}, items...)
}

func remove[T any](items []T, idx int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:idx]...)
	return append(out, items[idx+1:]...)
}
