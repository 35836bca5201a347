package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shopcapital/internal/currency"
	"github.com/mamadbah2/shopcapital/internal/domain/models"
	"github.com/mamadbah2/shopcapital/internal/service/reporting"
)

var fixedNow = time.Date(2024, time.June, 18, 21, 0, 0, 0, time.UTC)

type staticLedger struct {
	snap models.Snapshot
}

func (l staticLedger) Snapshot() models.Snapshot { return l.snap }

type MockArchive struct{ mock.Mock }

func (m *MockArchive) SaveDailyReport(ctx context.Context, report models.DailyReport) error {
	return m.Called(ctx, report).Error(0)
}

type MockExporter struct{ mock.Mock }

func (m *MockExporter) ExportMonthlyReport(ctx context.Context, row models.MonthlyReport) error {
	return m.Called(ctx, row).Error(0)
}

func (m *MockExporter) ExportDailyReport(ctx context.Context, report models.DailyReport) error {
	return m.Called(ctx, report).Error(0)
}

type MockMessaging struct{ mock.Mock }

func (m *MockMessaging) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	args := m.Called(mode, verifyToken, challenge)
	return args.String(0), args.Error(1)
}

func (m *MockMessaging) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	return m.Called(ctx, payload).Error(0)
}

func (m *MockMessaging) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	return m.Called(ctx, req).Error(0)
}

func snapshot() models.Snapshot {
	today := models.DateOf(fixedNow)
	return models.Snapshot{
		Sales: []models.Sale{models.SaleInput{
			Date: today, ItemName: "Rice", Quantity: 2,
			CostPrice: decimal.NewFromInt(10), SalePrice: decimal.NewFromInt(25),
		}.ToSale("s1")},
		InitialCapital: models.DefaultInitialCapital(),
	}
}

func newScheduler(t *testing.T, opts Options) *Scheduler {
	t.Helper()
	conv, err := currency.NewConverter(currency.USD, currency.DefaultExchangeRate)
	require.NoError(t, err)

	opts.Schedule = "0 21 * * *"
	opts.Ledger = staticLedger{snap: snapshot()}
	opts.Reporting = reporting.NewService(nil, nil)
	opts.Converter = conv

	s := NewScheduler(opts, nil)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestRunDailyReportAllSteps(t *testing.T) {
	archive := new(MockArchive)
	exporter := new(MockExporter)
	messaging := new(MockMessaging)
	ctx := context.Background()

	archive.On("SaveDailyReport", ctx, mock.MatchedBy(func(r models.DailyReport) bool {
		return r.SalesCount == 1 && r.SalesAmount.Equal(decimal.NewFromInt(50))
	})).Return(nil).Once()
	exporter.On("ExportDailyReport", ctx, mock.Anything).Return(nil).Once()
	exporter.On("ExportMonthlyReport", ctx, mock.MatchedBy(func(r models.MonthlyReport) bool {
		return r.MonthYear == "June 2024"
	})).Return(nil).Once()
	messaging.On("SendOutbound", ctx, mock.MatchedBy(func(req models.OutboundMessageRequest) bool {
		return req.To == "owner" && assert.Contains(t, req.Message, "Sales: $50.00")
	})).Return(nil).Once()

	s := newScheduler(t, Options{Archive: archive, Exporter: exporter, Messaging: messaging, Recipient: "owner"})
	require.NoError(t, s.RunDailyReport(ctx))

	archive.AssertExpectations(t)
	exporter.AssertExpectations(t)
	messaging.AssertExpectations(t)
}

func TestRunDailyReportContinuesAfterFailure(t *testing.T) {
	archive := new(MockArchive)
	messaging := new(MockMessaging)
	ctx := context.Background()

	archive.On("SaveDailyReport", ctx, mock.Anything).Return(errors.New("mongo down")).Once()
	messaging.On("SendOutbound", ctx, mock.Anything).Return(nil).Once()

	s := newScheduler(t, Options{Archive: archive, Messaging: messaging, Recipient: "owner"})
	err := s.RunDailyReport(ctx)

	assert.ErrorContains(t, err, "mongo down")
	messaging.AssertExpectations(t)
}

func TestRunDailyReportSkipsMessagingWithoutRecipient(t *testing.T) {
	messaging := new(MockMessaging)

	s := newScheduler(t, Options{Messaging: messaging})
	require.NoError(t, s.RunDailyReport(context.Background()))

	messaging.AssertNotCalled(t, "SendOutbound", mock.Anything, mock.Anything)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(Options{Schedule: "not a cron"}, nil)
	assert.Error(t, s.Start())
}

func TestStartAndStop(t *testing.T) {
	s := NewScheduler(Options{Schedule: "0 21 * * *"}, nil)
	require.NoError(t, s.Start())
	require.Len(t, s.cron.Entries(), 1)
	s.Stop()
}
