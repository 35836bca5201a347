package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopcapital/internal/currency"
	"github.com/mamadbah2/shopcapital/internal/domain/models"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not yet support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

const reportMonths = 3

const usage = `Commands:
/sale <qty> <cost> <price> <item...>
/expense <stock|op> <amount> <description...>
/today
/report`

// Ledger is the write surface the dispatcher records into.
type Ledger interface {
	AddSale(ctx context.Context, in models.SaleInput, inventoryItemID string) (models.Sale, error)
	AddExpense(ctx context.Context, in models.ExpenseInput) (models.Expense, error)
	Snapshot() models.Snapshot
}

// ReportingAdapter defines the reporting functions required by the dispatcher.
type ReportingAdapter interface {
	DailySummary(snap models.Snapshot, now time.Time, conv *currency.Converter) string
	MonthlySummary(snap models.Snapshot, limit int, conv *currency.Converter) string
}

// Dispatcher executes parsed commands.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	ledger    Ledger
	reporting ReportingAdapter
	converter *currency.Converter
	logger    *zap.Logger
	now       func() time.Time
}

// NewService constructs a command dispatcher. Amounts typed in chat are read
// in the converter's currency.
func NewService(ledger Ledger, reporting ReportingAdapter, converter *currency.Converter, location *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	return &Service{
		ledger:    ledger,
		reporting: reporting,
		converter: converter,
		logger:    logger,
		now:       func() time.Time { return time.Now().In(location) },
	}
}

// HandleCommand executes the command and returns the reply text.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	now := s.now()

	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandSale:
		input, err := s.buildSaleInput(cmd, now)
		if err != nil {
			return "", err
		}
		sale, err := s.ledger.AddSale(ctx, input, s.matchInventory(input.ItemName))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Sale recorded: %d x %s @ %s (profit %s).",
			sale.Quantity, sale.ItemName, s.converter.Format(sale.SalePrice), s.converter.Format(sale.Profit)), nil
	case models.CommandExpense:
		input, err := s.buildExpenseInput(cmd, now)
		if err != nil {
			return "", err
		}
		expense, err := s.ledger.AddExpense(ctx, input)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Expense logged: %s %s (%s) on %s.",
			expense.Description, s.converter.Format(expense.Amount), expense.Type, expense.Date), nil
	case models.CommandToday:
		return s.reporting.DailySummary(s.ledger.Snapshot(), now, s.converter), nil
	case models.CommandReport:
		return s.reporting.MonthlySummary(s.ledger.Snapshot(), reportMonths, s.converter), nil
	case models.CommandHelp:
		return usage, nil
	default:
		return "", ErrUnsupportedCommand
	}
}

// matchInventory returns the id of the stocked item with the given name, if any.
func (s *Service) matchInventory(name string) string {
	for _, item := range s.ledger.Snapshot().Inventory {
		if strings.EqualFold(item.Name, name) {
			return item.ID
		}
	}
	return ""
}

func (s *Service) buildSaleInput(cmd models.Command, now time.Time) (models.SaleInput, error) {
	if len(cmd.Args) < 4 {
		return models.SaleInput{}, ErrInvalidArguments
	}

	quantity, err := strconv.Atoi(cmd.Args[0])
	if err != nil {
		return models.SaleInput{}, ErrInvalidArguments
	}
	cost, err := s.parseAmount(cmd.Args[1])
	if err != nil {
		return models.SaleInput{}, err
	}
	price, err := s.parseAmount(cmd.Args[2])
	if err != nil {
		return models.SaleInput{}, err
	}

	return models.SaleInput{
		Date:      models.DateOf(now),
		ItemName:  strings.Join(cmd.Args[3:], " "),
		Quantity:  quantity,
		CostPrice: cost,
		SalePrice: price,
	}, nil
}

func (s *Service) buildExpenseInput(cmd models.Command, now time.Time) (models.ExpenseInput, error) {
	if len(cmd.Args) < 3 {
		return models.ExpenseInput{}, ErrInvalidArguments
	}

	var kind models.ExpenseType
	switch strings.ToLower(cmd.Args[0]) {
	case "stock", "restock", "purchase":
		kind = models.ExpenseStockPurchase
	case "op", "operating", "opex":
		kind = models.ExpenseOperating
	default:
		return models.ExpenseInput{}, ErrInvalidArguments
	}

	amount, err := s.parseAmount(cmd.Args[1])
	if err != nil {
		return models.ExpenseInput{}, err
	}

	return models.ExpenseInput{
		Date:        models.DateOf(now),
		Type:        kind,
		Description: strings.Join(cmd.Args[2:], " "),
		Amount:      amount,
	}, nil
}

// parseAmount reads a display-currency amount and converts it to the canonical unit.
func (s *Service) parseAmount(raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil {
		return decimal.Zero, ErrInvalidArguments
	}
	return s.converter.FromSelected(v), nil
}
