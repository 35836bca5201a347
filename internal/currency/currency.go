// Package currency converts canonical ledger amounts for display.
//
// The ledger stores every amount in USD. Conversion happens only at the
// presentation edge: after aggregation for outputs, before validation for inputs.
package currency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/mamadbah2/shopcapital/internal/domain/models"
)

// Code names a display currency.
type Code string

const (
	USD Code = "USD"
	MZN Code = "MZN"
)

// DefaultExchangeRate is MZN per USD when nothing is configured.
var DefaultExchangeRate = decimal.NewFromFloat(64.0)

// ErrUnsupportedCurrency is returned for codes other than USD and MZN.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// ErrInvalidRate is returned for non-positive exchange rates.
var ErrInvalidRate = errors.New("exchange rate must be positive")

// ParseCode normalizes a user-supplied currency code.
func ParseCode(raw string) (Code, error) {
	switch Code(strings.ToUpper(strings.TrimSpace(raw))) {
	case USD:
		return USD, nil
	case MZN:
		return MZN, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, raw)
	}
}

// Converter translates between the canonical unit and one display currency.
type Converter struct {
	code    Code
	rate    decimal.Decimal
	printer *message.Printer
}

// NewConverter builds a converter. rate is only consulted for MZN.
func NewConverter(code Code, rate decimal.Decimal) (*Converter, error) {
	if _, err := ParseCode(string(code)); err != nil {
		return nil, err
	}
	if !rate.IsPositive() {
		return nil, ErrInvalidRate
	}

	tag := language.AmericanEnglish
	if code == MZN {
		tag = language.MustParse("pt-MZ")
	}

	return &Converter{code: code, rate: rate, printer: message.NewPrinter(tag)}, nil
}

// Code returns the display currency.
func (c *Converter) Code() Code {
	return c.code
}

// Rate returns the configured exchange rate.
func (c *Converter) Rate() decimal.Decimal {
	return c.rate
}

// Symbol returns the short display symbol.
func (c *Converter) Symbol() string {
	if c.code == MZN {
		return "MT"
	}
	return "$"
}

// ToSelected converts a canonical amount into the display currency.
func (c *Converter) ToSelected(amount decimal.Decimal) decimal.Decimal {
	if c.code == MZN {
		return amount.Mul(c.rate)
	}
	return amount
}

// FromSelected converts a display-currency amount back into the canonical unit.
func (c *Converter) FromSelected(amount decimal.Decimal) decimal.Decimal {
	if c.code == MZN {
		return amount.Div(c.rate)
	}
	return amount
}

// Format converts a canonical amount and renders it with two decimals and grouping.
func (c *Converter) Format(amount decimal.Decimal) string {
	converted := c.ToSelected(amount).Round(2)
	sign := ""
	if converted.IsNegative() {
		sign = "-"
		converted = converted.Abs()
	}
	digits := c.printer.Sprint(number.Decimal(converted.InexactFloat64(), number.Scale(2)))
	if c.code == MZN {
		return fmt.Sprintf("%s%s %s", sign, digits, c.Symbol())
	}
	return fmt.Sprintf("%s%s%s", sign, c.Symbol(), digits)
}

// Metrics converts every monetary field of the dashboard. Percentages are left as is.
func (c *Converter) Metrics(m models.DashboardMetrics) models.DashboardMetrics {
	out := m
	out.TodaysSales = c.ToSelected(m.TodaysSales)
	out.TodaysExpenses = c.ToSelected(m.TodaysExpenses)
	out.TodaysProfit = c.ToSelected(m.TodaysProfit)
	out.TotalProfit = c.ToSelected(m.TotalProfit)
	out.TotalOperatingExpenses = c.ToSelected(m.TotalOperatingExpenses)
	out.TotalStockPurchases = c.ToSelected(m.TotalStockPurchases)
	out.TotalStockValue = c.ToSelected(m.TotalStockValue)
	out.CurrentCash = c.ToSelected(m.CurrentCash)
	out.StartingCapital = c.ToSelected(m.StartingCapital)
	out.TotalCapital = c.ToSelected(m.TotalCapital)

	out.MonthlyProfit = make([]models.MonthlyData, len(m.MonthlyProfit))
	for i, b := range m.MonthlyProfit {
		b.Sales = c.ToSelected(b.Sales)
		b.Expenses = c.ToSelected(b.Expenses)
		b.Profit = c.ToSelected(b.Profit)
		b.CapitalDelta = c.ToSelected(b.CapitalDelta)
		out.MonthlyProfit[i] = b
	}

	out.ExpenseCategories = make([]models.ExpenseCategoryData, len(m.ExpenseCategories))
	for i, cat := range m.ExpenseCategories {
		cat.Value = c.ToSelected(cat.Value)
		out.ExpenseCategories[i] = cat
	}

	out.CapitalHistory = make([]models.CapitalData, len(m.CapitalHistory))
	for i, p := range m.CapitalHistory {
		p.Capital = c.ToSelected(p.Capital)
		out.CapitalHistory[i] = p
	}
	return out
}

// Reports converts the monetary fields of monthly report rows.
func (c *Converter) Reports(rows []models.MonthlyReport) []models.MonthlyReport {
	out := make([]models.MonthlyReport, len(rows))
	for i, r := range rows {
		r.Sales = c.ToSelected(r.Sales)
		r.Expenses = c.ToSelected(r.Expenses)
		r.Profit = c.ToSelected(r.Profit)
		r.CapitalGrowth = c.ToSelected(r.CapitalGrowth)
		r.ClosingCapital = c.ToSelected(r.ClosingCapital)
		out[i] = r
	}
	return out
}
