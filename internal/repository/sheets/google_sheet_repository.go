package sheets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/shopcapital/internal/config"
	"github.com/mamadbah2/shopcapital/internal/domain/models"
)

const (
	monthlySheet = "Monthly"
	dailySheet   = "Daily"
)

// Exporter mirrors report rows into a spreadsheet.
type Exporter interface {
	ExportMonthlyReport(ctx context.Context, row models.MonthlyReport) error
	ExportDailyReport(ctx context.Context, report models.DailyReport) error
}

// valuesClient is the slice of the Sheets values API the exporter needs.
type valuesClient interface {
	Append(ctx context.Context, sheetRange string, rows [][]interface{}) error
	Get(ctx context.Context, sheetRange string) ([][]interface{}, error)
	Update(ctx context.Context, sheetRange string, rows [][]interface{}) error
}

// GoogleSheetRepository implements Exporter on top of the Google Sheets API.
type GoogleSheetRepository struct {
	values valuesClient
	logger *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed exporter.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return newRepository(&googleValues{service: service, spreadsheetID: cfg.SpreadsheetID}, logger), nil
}

func newRepository(values valuesClient, logger *zap.Logger) *GoogleSheetRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoogleSheetRepository{values: values, logger: logger}
}

// ExportMonthlyReport writes the row for the report's month, replacing an
// existing row with the same month label.
func (r *GoogleSheetRepository) ExportMonthlyReport(ctx context.Context, row models.MonthlyReport) error {
	labels, err := r.values.Get(ctx, monthlySheet+"!A:A")
	if err != nil {
		return fmt.Errorf("read monthly labels: %w", err)
	}

	values := [][]interface{}{monthlyRow(row)}
	for i, cells := range labels {
		if len(cells) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(cells[0])) != row.MonthYear {
			continue
		}
		target := fmt.Sprintf("%s!A%d:F%d", monthlySheet, i+1, i+1)
		if err := r.values.Update(ctx, target, values); err != nil {
			return fmt.Errorf("update monthly row %s: %w", row.MonthYear, err)
		}
		r.logger.Debug("monthly row updated", zap.String("month", row.MonthYear), zap.String("range", target))
		return nil
	}

	if err := r.values.Append(ctx, monthlySheet+"!A:F", values); err != nil {
		return fmt.Errorf("append monthly row %s: %w", row.MonthYear, err)
	}
	r.logger.Debug("monthly row appended", zap.String("month", row.MonthYear))
	return nil
}

// ExportDailyReport appends one line per end-of-day report.
func (r *GoogleSheetRepository) ExportDailyReport(ctx context.Context, report models.DailyReport) error {
	if err := r.values.Append(ctx, dailySheet+"!A:H", [][]interface{}{dailyRow(report)}); err != nil {
		return fmt.Errorf("append daily row: %w", err)
	}
	r.logger.Debug("daily row appended", zap.Time("date", report.Date))
	return nil
}

func monthlyRow(r models.MonthlyReport) []interface{} {
	return []interface{}{
		r.MonthYear,
		r.Sales.StringFixed(2),
		r.Expenses.StringFixed(2),
		r.Profit.StringFixed(2),
		r.CapitalGrowth.StringFixed(2),
		r.ClosingCapital.StringFixed(2),
	}
}

func dailyRow(r models.DailyReport) []interface{} {
	return []interface{}{
		r.Date.Format("2006-01-02"),
		r.SalesAmount.StringFixed(2),
		r.Expenses.StringFixed(2),
		r.Profit.StringFixed(2),
		r.CurrentCash.StringFixed(2),
		r.StockValue.StringFixed(2),
		r.TotalCapital.StringFixed(2),
		r.SalesCount,
	}
}

type googleValues struct {
	service       *sheetsapi.Service
	spreadsheetID string
}

func (g *googleValues) Append(ctx context.Context, sheetRange string, rows [][]interface{}) error {
	payload := &sheetsapi.ValueRange{Values: rows}

	call := g.service.Spreadsheets.Values.Append(g.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append into range %s: %w", sheetRange, err)
	}
	return nil
}

func (g *googleValues) Get(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	resp, err := g.service.Spreadsheets.Values.Get(g.spreadsheetID, sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}
	return resp.Values, nil
}

func (g *googleValues) Update(ctx context.Context, sheetRange string, rows [][]interface{}) error {
	payload := &sheetsapi.ValueRange{Values: rows}

	call := g.service.Spreadsheets.Values.Update(g.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("update range %s: %w", sheetRange, err)
	}
	return nil
}
