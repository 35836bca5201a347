package commands

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shopcapital/internal/currency"
	"github.com/mamadbah2/shopcapital/internal/domain/models"
)

var fixedNow = time.Date(2024, time.June, 18, 10, 0, 0, 0, time.UTC)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) AddSale(ctx context.Context, in models.SaleInput, inventoryItemID string) (models.Sale, error) {
	args := m.Called(ctx, in, inventoryItemID)
	return args.Get(0).(models.Sale), args.Error(1)
}

func (m *MockLedger) AddExpense(ctx context.Context, in models.ExpenseInput) (models.Expense, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(models.Expense), args.Error(1)
}

func (m *MockLedger) Snapshot() models.Snapshot {
	return m.Called().Get(0).(models.Snapshot)
}

type stubReporting struct {
	limit int
}

func (s *stubReporting) DailySummary(models.Snapshot, time.Time, *currency.Converter) string {
	return "daily"
}

func (s *stubReporting) MonthlySummary(_ models.Snapshot, limit int, _ *currency.Converter) string {
	s.limit = limit
	return "monthly"
}

func newTestService(t *testing.T, code currency.Code) (*Service, *MockLedger, *stubReporting) {
	t.Helper()
	conv, err := currency.NewConverter(code, currency.DefaultExchangeRate)
	require.NoError(t, err)

	ledger := new(MockLedger)
	reporting := &stubReporting{}
	svc := NewService(ledger, reporting, conv, time.UTC, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc, ledger, reporting
}

func TestSaleCommandMatchesInventory(t *testing.T) {
	svc, ledger, _ := newTestService(t, currency.USD)
	ctx := context.Background()

	ledger.On("Snapshot").Return(models.Snapshot{
		Inventory: []models.InventoryItem{{ID: "inv-1", Name: "Rice Bag"}},
	})
	ledger.On("AddSale", ctx, mock.MatchedBy(func(in models.SaleInput) bool {
		return in.Quantity == 2 &&
			in.ItemName == "rice bag" &&
			in.CostPrice.Equal(decimal.NewFromInt(10)) &&
			in.SalePrice.Equal(decimal.NewFromInt(25)) &&
			in.Date == models.DateOf(fixedNow)
	}), "inv-1").Return(models.Sale{
		ItemName:  "rice bag",
		Quantity:  2,
		SalePrice: decimal.NewFromInt(25),
		Profit:    decimal.NewFromInt(30),
	}, nil).Once()

	reply, err := svc.HandleCommand(ctx, models.ParseCommand("/sale 2 10 25 rice bag"), "2588")
	require.NoError(t, err)

	assert.Contains(t, reply, "profit $30.00")
	ledger.AssertExpectations(t)
}

func TestSaleCommandConvertsFromDisplayCurrency(t *testing.T) {
	svc, ledger, _ := newTestService(t, currency.MZN)
	ctx := context.Background()

	ledger.On("Snapshot").Return(models.Snapshot{})
	ledger.On("AddSale", ctx, mock.MatchedBy(func(in models.SaleInput) bool {
		return in.CostPrice.Equal(decimal.NewFromInt(1)) && in.SalePrice.Equal(decimal.NewFromInt(2))
	}), "").Return(models.Sale{Quantity: 1}, nil).Once()

	_, err := svc.HandleCommand(ctx, models.ParseCommand("/sale 1 64 128 soap"), "2588")
	require.NoError(t, err)
	ledger.AssertExpectations(t)
}

func TestSaleCommandRejectsBadArguments(t *testing.T) {
	svc, _, _ := newTestService(t, currency.USD)

	for _, text := range []string{"/sale", "/sale 2 10 25", "/sale two 10 25 rice", "/sale 2 x 25 rice"} {
		_, err := svc.HandleCommand(context.Background(), models.ParseCommand(text), "2588")
		assert.ErrorIs(t, err, ErrInvalidArguments, text)
	}
}

func TestExpenseCommand(t *testing.T) {
	svc, ledger, _ := newTestService(t, currency.USD)
	ctx := context.Background()

	ledger.On("AddExpense", ctx, models.ExpenseInput{
		Date:        models.DateOf(fixedNow),
		Type:        models.ExpenseStockPurchase,
		Description: "soap crates",
		Amount:      decimal.RequireFromString("40.5"),
	}).Return(models.Expense{
		Date:        models.DateOf(fixedNow),
		Type:        models.ExpenseStockPurchase,
		Description: "soap crates",
		Amount:      decimal.RequireFromString("40.5"),
	}, nil).Once()

	reply, err := svc.HandleCommand(ctx, models.ParseCommand("/expense stock 40,5 soap crates"), "2588")
	require.NoError(t, err)

	assert.Contains(t, reply, "$40.50")
	assert.Contains(t, reply, "2024-06-18")
	ledger.AssertExpectations(t)
}

func TestExpenseCommandUnknownKind(t *testing.T) {
	svc, _, _ := newTestService(t, currency.USD)

	_, err := svc.HandleCommand(context.Background(), models.ParseCommand("/expense misc 10 lunch"), "2588")
	assert.ErrorIs(t, err, ErrInvalidArguments)
}

func TestSummaryCommands(t *testing.T) {
	svc, ledger, reporting := newTestService(t, currency.USD)
	ledger.On("Snapshot").Return(models.Snapshot{})

	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("/today"), "2588")
	require.NoError(t, err)
	assert.Equal(t, "daily", reply)

	reply, err = svc.HandleCommand(context.Background(), models.ParseCommand("/REPORT"), "2588")
	require.NoError(t, err)
	assert.Equal(t, "monthly", reply)
	assert.Equal(t, reportMonths, reporting.limit)
}

func TestHelpAndUnknown(t *testing.T) {
	svc, _, _ := newTestService(t, currency.USD)

	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("/help"), "2588")
	require.NoError(t, err)
	assert.Contains(t, reply, "/sale")

	_, err = svc.HandleCommand(context.Background(), models.ParseCommand("hello"), "2588")
	assert.ErrorIs(t, err, ErrUnsupportedCommand)
}
