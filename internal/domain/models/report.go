package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyData is one bucket of the trailing dashboard series.
//
// Sales is a display quantity equal to the bucket's sale profit plus its
// expenses. It is not revenue; use MonthlyReport.Sales for revenue.
// CapitalDelta is the bucket's effect on capital: sale profit minus operating
// expenses. Stock purchases are excluded because they only move cash into stock.
type MonthlyData struct {
	Month        string          `json:"month"`
	Year         int             `json:"year"`
	MonthIndex   time.Month      `json:"monthIndex"`
	Sales        decimal.Decimal `json:"sales"`
	Expenses     decimal.Decimal `json:"expenses"`
	Profit       decimal.Decimal `json:"profit"`
	CapitalDelta decimal.Decimal `json:"capitalDelta"`
}

// ExpenseCategoryData is one slice of the expense breakdown.
type ExpenseCategoryData struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// CapitalData is one point of the capital history, aligned with MonthlyData.
type CapitalData struct {
	Month   string          `json:"month"`
	Year    int             `json:"year"`
	Capital decimal.Decimal `json:"capital"`
}

// DashboardMetrics is the full engine output for one reference instant.
type DashboardMetrics struct {
	AsOf                    Date                  `json:"asOf"`
	TodaysSales             decimal.Decimal       `json:"todaysSales"`
	TodaysExpenses          decimal.Decimal       `json:"todaysExpenses"`
	TodaysProfit            decimal.Decimal       `json:"todaysProfit"`
	TotalProfit             decimal.Decimal       `json:"totalProfit"`
	TotalOperatingExpenses  decimal.Decimal       `json:"totalOperatingExpenses"`
	TotalStockPurchases     decimal.Decimal       `json:"totalStockPurchases"`
	TotalStockValue         decimal.Decimal       `json:"totalStockValue"`
	CurrentCash             decimal.Decimal       `json:"currentCash"`
	StartingCapital         decimal.Decimal       `json:"startingCapital"`
	TotalCapital            decimal.Decimal       `json:"totalCapital"`
	CapitalGrowthPercentage decimal.Decimal       `json:"capitalGrowthPercentage"`
	MonthlyProfit           []MonthlyData         `json:"monthlyProfitData"`
	ExpenseCategories       []ExpenseCategoryData `json:"expenseCategoryData"`
	CapitalHistory          []CapitalData         `json:"capitalHistory"`
}

// MonthlyReport is one row of the unbounded monthly report.
type MonthlyReport struct {
	MonthYear      string          `json:"monthYear"`
	Year           int             `json:"year"`
	Month          time.Month      `json:"month"`
	Sales          decimal.Decimal `json:"sales"`
	Expenses       decimal.Decimal `json:"expenses"`
	Profit         decimal.Decimal `json:"profit"`
	CapitalGrowth  decimal.Decimal `json:"capitalGrowth"`
	ClosingCapital decimal.Decimal `json:"closingCapital"`
}

// DailyReport is the archived end-of-day summary stored in MongoDB.
type DailyReport struct {
	Date          time.Time       `json:"date"`
	SalesAmount   decimal.Decimal `json:"sales_amount"`
	Expenses      decimal.Decimal `json:"expenses"`
	Profit        decimal.Decimal `json:"profit"`
	CurrentCash   decimal.Decimal `json:"current_cash"`
	StockValue    decimal.Decimal `json:"stock_value"`
	TotalCapital  decimal.Decimal `json:"total_capital"`
	GrowthPercent decimal.Decimal `json:"growth_percent"`
	SalesCount    int             `json:"sales_count"`
	LowStockItems []string        `json:"low_stock_items"`
	CreatedAt     time.Time       `json:"created_at"`
}
