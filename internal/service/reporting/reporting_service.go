package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopcapital/internal/currency"
	"github.com/mamadbah2/shopcapital/internal/domain/calendar"
	"github.com/mamadbah2/shopcapital/internal/domain/models"
	"github.com/mamadbah2/shopcapital/internal/service/metrics"
)

const dateLayout = "2006-01-02"

// Service groups the full ledger history into monthly report rows and renders
// the text summaries pushed over WhatsApp.
type Service struct {
	engine *metrics.Engine
	logger *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(engine *metrics.Engine, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = metrics.NewEngine(logger)
	}
	return &Service{engine: engine, logger: logger}
}

type monthTotals struct {
	key            calendar.MonthKey
	revenue        decimal.Decimal
	saleProfit     decimal.Decimal
	expenses       decimal.Decimal
	stockPurchases decimal.Decimal
}

// MonthlyReports groups every sale and expense by calendar month and returns
// one row per month that has activity, newest first.
//
// CapitalGrowth is the month's sale profit minus its operating expenses, so the
// starting capital plus the sum of every row's CapitalGrowth equals the
// dashboard's total capital.
func (s *Service) MonthlyReports(snap models.Snapshot) []models.MonthlyReport {
	months := make(map[calendar.MonthKey]*monthTotals)
	get := func(k calendar.MonthKey) *monthTotals {
		m, ok := months[k]
		if !ok {
			m = &monthTotals{key: k}
			months[k] = m
		}
		return m
	}

	for _, sale := range snap.Sales {
		m := get(calendar.KeyOf(sale.Date))
		m.revenue = m.revenue.Add(sale.Revenue())
		m.saleProfit = m.saleProfit.Add(sale.Profit)
	}
	for _, exp := range snap.Expenses {
		m := get(calendar.KeyOf(exp.Date))
		m.expenses = m.expenses.Add(exp.Amount)
		if exp.Type == models.ExpenseStockPurchase {
			m.stockPurchases = m.stockPurchases.Add(exp.Amount)
		}
	}

	ordered := make([]*monthTotals, 0, len(months))
	for _, m := range months {
		ordered = append(ordered, m)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].key.Before(ordered[j].key)
	})

	running := snap.InitialCapital.Total()
	rows := make([]models.MonthlyReport, len(ordered))
	for i, m := range ordered {
		growth := m.saleProfit.Sub(m.expenses).Add(m.stockPurchases)
		running = running.Add(growth)
		// newest first
		rows[len(ordered)-1-i] = models.MonthlyReport{
			MonthYear:      m.key.LongLabel(),
			Year:           m.key.Year,
			Month:          m.key.Month,
			Sales:          m.revenue,
			Expenses:       m.expenses,
			Profit:         m.saleProfit.Sub(m.expenses),
			CapitalGrowth:  growth,
			ClosingCapital: running,
		}
	}

	s.logger.Debug("monthly reports built", zap.Int("months", len(rows)))
	return rows
}

// DailySummary renders today's dashboard figures as a chat-friendly message.
func (s *Service) DailySummary(snap models.Snapshot, now time.Time, conv *currency.Converter) string {
	m := s.engine.Compute(snap, now)

	var b strings.Builder
	fmt.Fprintf(&b, "Shop summary (%s)\n", now.Format(dateLayout))
	fmt.Fprintf(&b, "Sales: %s\n", conv.Format(m.TodaysSales))
	fmt.Fprintf(&b, "Expenses: %s\n", conv.Format(m.TodaysExpenses))
	fmt.Fprintf(&b, "Profit: %s\n", conv.Format(m.TodaysProfit))
	fmt.Fprintf(&b, "Cash: %s | Stock: %s\n", conv.Format(m.CurrentCash), conv.Format(m.TotalStockValue))
	fmt.Fprintf(&b, "Capital: %s (%s%% total growth)", conv.Format(m.TotalCapital), m.CapitalGrowthPercentage.StringFixed(2))

	if low := LowStockItems(snap.Inventory); len(low) > 0 {
		fmt.Fprintf(&b, "\nLow stock: %s", strings.Join(low, ", "))
	}

	return b.String()
}

// MonthlySummary renders the most recent report rows, newest first.
func (s *Service) MonthlySummary(snap models.Snapshot, limit int, conv *currency.Converter) string {
	rows := s.MonthlyReports(snap)
	if len(rows) == 0 {
		return "Monthly report: no sales or expenses recorded yet."
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	var b strings.Builder
	b.WriteString("Monthly report")
	for _, r := range rows {
		fmt.Fprintf(&b, "\n%s: sales %s, expenses %s, profit %s, capital growth %s, closing capital %s",
			r.MonthYear, conv.Format(r.Sales), conv.Format(r.Expenses), conv.Format(r.Profit),
			conv.Format(r.CapitalGrowth), conv.Format(r.ClosingCapital))
	}
	return b.String()
}

// DailyReport builds the archived end-of-day document.
func (s *Service) DailyReport(snap models.Snapshot, now time.Time) models.DailyReport {
	m := s.engine.Compute(snap, now)

	salesCount := 0
	for _, sale := range snap.Sales {
		if sale.Date.SameDay(m.AsOf) {
			salesCount++
		}
	}

	return models.DailyReport{
		Date:          m.AsOf.Time,
		SalesAmount:   m.TodaysSales,
		Expenses:      m.TodaysExpenses,
		Profit:        m.TodaysProfit,
		CurrentCash:   m.CurrentCash,
		StockValue:    m.TotalStockValue,
		TotalCapital:  m.TotalCapital,
		GrowthPercent: m.CapitalGrowthPercentage.Round(4),
		SalesCount:    salesCount,
		LowStockItems: LowStockItems(snap.Inventory),
		CreatedAt:     now.UTC(),
	}
}

// LowStockItems lists the names of items at or below the low-stock threshold.
func LowStockItems(items []models.InventoryItem) []string {
	var names []string
	for _, item := range items {
		if item.LowStock() {
			names = append(names, item.Name)
		}
	}
	return names
}
