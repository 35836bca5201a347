// Package metrics derives dashboard figures from a ledger snapshot.
package metrics

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopcapital/internal/domain/calendar"
	"github.com/mamadbah2/shopcapital/internal/domain/models"
)

var hundred = decimal.NewFromInt(100)

// Engine computes DashboardMetrics. It holds no state between calls; every
// result is a pure function of the snapshot and the reference instant.
type Engine struct {
	window int
	logger *zap.Logger
}

// NewEngine wires a metrics engine with the standard six-month window.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{window: calendar.DashboardWindow, logger: logger}
}

type bucketTotals struct {
	saleProfit     decimal.Decimal
	expenses       decimal.Decimal
	stockPurchases decimal.Decimal
}

// Compute derives every dashboard metric as of now.
func (e *Engine) Compute(snap models.Snapshot, now time.Time) models.DashboardMetrics {
	today := models.DateOf(now)
	windowStart := calendar.WindowStart(now, e.window)
	keys := calendar.Trailing(now, e.window)

	buckets := make(map[calendar.MonthKey]*bucketTotals, len(keys))
	for _, k := range keys {
		buckets[k] = &bucketTotals{}
	}

	var (
		todaysSales, todaysSaleProfit, todaysExpenses decimal.Decimal
		totalProfit, totalOperating, totalStock       decimal.Decimal
		profitBefore, operatingBefore                 decimal.Decimal
	)

	for _, s := range snap.Sales {
		totalProfit = totalProfit.Add(s.Profit)
		if s.Date.SameDay(today) {
			todaysSales = todaysSales.Add(s.Revenue())
			todaysSaleProfit = todaysSaleProfit.Add(s.Profit)
		}
		if s.Date.BeforeDate(windowStart) {
			profitBefore = profitBefore.Add(s.Profit)
		}
		if b, ok := buckets[calendar.KeyOf(s.Date)]; ok {
			b.saleProfit = b.saleProfit.Add(s.Profit)
		}
	}

	categories := make([]models.ExpenseCategoryData, 0)
	categoryIndex := make(map[string]int)

	for _, x := range snap.Expenses {
		switch x.Type {
		case models.ExpenseStockPurchase:
			totalStock = totalStock.Add(x.Amount)
		default:
			totalOperating = totalOperating.Add(x.Amount)
			if x.Date.BeforeDate(windowStart) {
				operatingBefore = operatingBefore.Add(x.Amount)
			}
		}
		if x.Date.SameDay(today) {
			todaysExpenses = todaysExpenses.Add(x.Amount)
		}
		if b, ok := buckets[calendar.KeyOf(x.Date)]; ok {
			b.expenses = b.expenses.Add(x.Amount)
			if x.Type == models.ExpenseStockPurchase {
				b.stockPurchases = b.stockPurchases.Add(x.Amount)
			}
		}

		name := x.Category()
		if idx, ok := categoryIndex[name]; ok {
			categories[idx].Value = categories[idx].Value.Add(x.Amount)
			continue
		}
		categoryIndex[name] = len(categories)
		categories = append(categories, models.ExpenseCategoryData{Name: name, Value: x.Amount})
	}

	start := snap.InitialCapital.Total()
	stockValue := snap.InitialCapital.Stock.Add(totalStock)
	cash := snap.InitialCapital.Cash.Add(totalProfit).Sub(totalOperating).Sub(totalStock)
	capital := cash.Add(stockValue)

	monthly := make([]models.MonthlyData, len(keys))
	history := make([]models.CapitalData, len(keys))
	running := start.Add(profitBefore).Sub(operatingBefore)

	for i, k := range keys {
		b := buckets[k]
		delta := b.saleProfit.Sub(b.expenses).Add(b.stockPurchases)
		monthly[i] = models.MonthlyData{
			Month:        k.ShortLabel(),
			Year:         k.Year,
			MonthIndex:   k.Month,
			Sales:        b.saleProfit.Add(b.expenses),
			Expenses:     b.expenses,
			Profit:       b.saleProfit.Sub(b.expenses),
			CapitalDelta: delta,
		}
		running = running.Add(delta)
		history[i] = models.CapitalData{Month: k.ShortLabel(), Year: k.Year, Capital: running}
	}

	result := models.DashboardMetrics{
		AsOf:                    today,
		TodaysSales:             todaysSales,
		TodaysExpenses:          todaysExpenses,
		TodaysProfit:            todaysSaleProfit.Sub(todaysExpenses),
		TotalProfit:             totalProfit,
		TotalOperatingExpenses:  totalOperating,
		TotalStockPurchases:     totalStock,
		TotalStockValue:         stockValue,
		CurrentCash:             cash,
		StartingCapital:         start,
		TotalCapital:            capital,
		CapitalGrowthPercentage: GrowthPercentage(start, capital),
		MonthlyProfit:           monthly,
		ExpenseCategories:       categories,
		CapitalHistory:          history,
	}

	e.logger.Debug("dashboard metrics computed",
		zap.String("as_of", today.String()),
		zap.Int("sales", len(snap.Sales)),
		zap.Int("expenses", len(snap.Expenses)),
		zap.String("total_capital", capital.String()))

	return result
}

// GrowthPercentage is (current − start) / start × 100, or zero when start is zero.
func GrowthPercentage(start, current decimal.Decimal) decimal.Decimal {
	if start.IsZero() {
		return decimal.Zero
	}
	return current.Sub(start).Div(start).Mul(hundred)
}
