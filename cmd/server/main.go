package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopcapital/internal/config"
	"github.com/mamadbah2/shopcapital/internal/currency"
	"github.com/mamadbah2/shopcapital/internal/ledger"
	"github.com/mamadbah2/shopcapital/internal/repository/mongodb"
	"github.com/mamadbah2/shopcapital/internal/repository/sheets"
	"github.com/mamadbah2/shopcapital/internal/scheduler"
	"github.com/mamadbah2/shopcapital/internal/server/handlers"
	"github.com/mamadbah2/shopcapital/internal/server/router"
	commandsvc "github.com/mamadbah2/shopcapital/internal/service/commands"
	metricssvc "github.com/mamadbah2/shopcapital/internal/service/metrics"
	reportingsvc "github.com/mamadbah2/shopcapital/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/shopcapital/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/shopcapital/pkg/clients/whatsapp"
	"github.com/mamadbah2/shopcapital/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	location, err := cfg.Reporting.Location()
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.Error(err))
	}

	code, err := currency.ParseCode(cfg.Display.Currency)
	if err != nil {
		baseLogger.Fatal("invalid display currency", zap.Error(err))
	}
	converter, err := currency.NewConverter(code, decimal.NewFromFloat(cfg.Display.ExchangeRate))
	if err != nil {
		baseLogger.Fatal("invalid exchange rate", zap.Error(err))
	}

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 20*time.Second)
	mongoRepo, err := mongodb.NewMongoDBRepository(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName, baseLogger.Named("repo.mongodb"))
	cancelConnect()
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	shopLedger := ledger.New(mongoRepo, baseLogger.Named("ledger"))
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	shopLedger.Load(loadCtx)
	cancelLoad()

	metricsEngine := metricssvc.NewEngine(baseLogger.Named("svc.metrics"))
	reportingSvc := reportingsvc.NewService(metricsEngine, baseLogger.Named("svc.reporting"))

	schedOpts := scheduler.Options{
		Schedule:  cfg.Reporting.CronSchedule,
		Location:  location,
		Recipient: cfg.WhatsApp.ReportRecipient,
		Ledger:    shopLedger,
		Reporting: reportingSvc,
		Converter: converter,
		Archive:   mongoRepo,
	}

	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		schedOpts.Exporter = sheetsRepo
	} else {
		baseLogger.Warn("google sheets not configured, spreadsheet export disabled")
	}

	var webhookHandler *handlers.WebhookHandler
	if cfg.WhatsApp.Enabled() {
		commandDispatcher := commandsvc.NewService(shopLedger, reportingSvc, converter, location, baseLogger.Named("svc.commands"))
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp, baseLogger.Named("client.whatsapp"))
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, commandDispatcher, baseLogger.Named("svc.whatsapp"))
		webhookHandler = handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp"))
		schedOpts.Messaging = messagingSvc
	} else {
		baseLogger.Warn("whatsapp credentials missing, chat commands and summaries disabled")
	}

	shopHandler := handlers.NewShopHandler(shopLedger, metricsEngine, reportingSvc, converter, location, baseLogger.Named("handlers.shop"))
	engine := router.New(shopHandler, webhookHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(schedOpts, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("currency", string(converter.Code())))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
