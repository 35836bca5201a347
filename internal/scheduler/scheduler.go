package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopcapital/internal/currency"
	"github.com/mamadbah2/shopcapital/internal/domain/calendar"
	"github.com/mamadbah2/shopcapital/internal/domain/models"
	"github.com/mamadbah2/shopcapital/internal/repository/mongodb"
	"github.com/mamadbah2/shopcapital/internal/repository/sheets"
	"github.com/mamadbah2/shopcapital/internal/service/reporting"
	"github.com/mamadbah2/shopcapital/internal/service/whatsapp"
)

const jobTimeout = 2 * time.Minute

// SnapshotSource supplies the ledger state the reports are built from.
type SnapshotSource interface {
	Snapshot() models.Snapshot
}

// Options carries the collaborators of the end-of-day job. Archive, Exporter
// and Messaging are optional; a nil value skips that step.
type Options struct {
	Schedule  string
	Location  *time.Location
	Recipient string
	Ledger    SnapshotSource
	Reporting *reporting.Service
	Converter *currency.Converter
	Archive   mongodb.ReportArchive
	Exporter  sheets.Exporter
	Messaging whatsapp.MessagingService
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron   *cron.Cron
	opts   Options
	now    func() time.Time
	logger *zap.Logger
}

// NewScheduler creates a new scheduler instance running in opts.Location.
func NewScheduler(opts Options, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	c := cron.New(cron.WithLocation(opts.Location))

	return &Scheduler{
		cron:   c,
		opts:   opts,
		now:    func() time.Time { return time.Now().In(opts.Location) },
		logger: logger,
	}
}

// Start registers the end-of-day job and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.opts.Schedule), zap.String("location", s.opts.Location.String()))

	if _, err := s.cron.AddFunc(s.opts.Schedule, s.runScheduled); err != nil {
		return fmt.Errorf("schedule daily report: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.RunDailyReport(ctx); err != nil {
		s.logger.Error("daily report incomplete", zap.Error(err))
		return
	}
	s.logger.Info("daily report completed")
}

// RunDailyReport archives today's report, mirrors the current month into the
// spreadsheet and sends the summary. Every step runs even if an earlier one
// fails; the returned error joins all failures.
func (s *Scheduler) RunDailyReport(ctx context.Context) error {
	now := s.now()
	snap := s.opts.Ledger.Snapshot()
	var errs []error

	report := s.opts.Reporting.DailyReport(snap, now)

	if s.opts.Archive != nil {
		if err := s.opts.Archive.SaveDailyReport(ctx, report); err != nil {
			errs = append(errs, fmt.Errorf("archive daily report: %w", err))
		}
	}

	if s.opts.Exporter != nil {
		if err := s.opts.Exporter.ExportDailyReport(ctx, report); err != nil {
			errs = append(errs, fmt.Errorf("export daily report: %w", err))
		}
		if row, ok := s.currentMonth(snap, now); ok {
			if err := s.opts.Exporter.ExportMonthlyReport(ctx, row); err != nil {
				errs = append(errs, fmt.Errorf("export monthly report: %w", err))
			}
		}
	}

	if s.opts.Messaging != nil && s.opts.Recipient != "" {
		req := models.OutboundMessageRequest{
			To:      s.opts.Recipient,
			Message: s.opts.Reporting.DailySummary(snap, now, s.opts.Converter),
		}
		if err := s.opts.Messaging.SendOutbound(ctx, req); err != nil {
			errs = append(errs, fmt.Errorf("send daily summary: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (s *Scheduler) currentMonth(snap models.Snapshot, now time.Time) (models.MonthlyReport, bool) {
	key := calendar.KeyAt(now)
	for _, row := range s.opts.Reporting.MonthlyReports(snap) {
		if row.Year == key.Year && row.Month == key.Month {
			return row, true
		}
	}
	return models.MonthlyReport{}, false
}
