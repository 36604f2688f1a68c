package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/couchcryptid/supply-risk-monitor/internal/adapter/badgerstore"
	"github.com/couchcryptid/supply-risk-monitor/internal/adapter/gdacs"
	"github.com/couchcryptid/supply-risk-monitor/internal/adapter/httpapi"
	kafkaadapter "github.com/couchcryptid/supply-risk-monitor/internal/adapter/kafka"
	"github.com/couchcryptid/supply-risk-monitor/internal/adapter/newsapi"
	"github.com/couchcryptid/supply-risk-monitor/internal/adapter/openweather"
	"github.com/couchcryptid/supply-risk-monitor/internal/adapter/worldbank"
	"github.com/couchcryptid/supply-risk-monitor/internal/adapter/yahoofinance"
	"github.com/couchcryptid/supply-risk-monitor/internal/assessment"
	"github.com/couchcryptid/supply-risk-monitor/internal/config"
	"github.com/couchcryptid/supply-risk-monitor/internal/cycle"
	"github.com/couchcryptid/supply-risk-monitor/internal/domain"
	"github.com/couchcryptid/supply-risk-monitor/internal/observability"
	"github.com/couchcryptid/supply-risk-monitor/internal/orchestrator"
	"github.com/couchcryptid/supply-risk-monitor/internal/risk"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	subjects, err := domain.LoadSubjects(cfg.SubjectsPath)
	if err != nil {
		logger.Error("failed to load subject registry", "path", cfg.SubjectsPath, "error", err)
		os.Exit(1)
	}
	logger.Info("subject registry loaded", "subjects", len(subjects))

	weights, err := risk.LoadWeights(cfg.RiskTablesPath)
	if err != nil {
		logger.Error("failed to load risk tables", "path", cfg.RiskTablesPath, "error", err)
		os.Exit(1)
	}

	store, err := badgerstore.Open(cfg.StorePath, nil, logger)
	if err != nil {
		logger.Error("failed to open assessment store", "path", cfg.StorePath, "error", err)
		os.Exit(1)
	}

	sources := orchestrator.Sources{
		Weather:   openweather.NewClient(cfg.WeatherAPIKey, cfg.FetchTimeout, logger),
		Disasters: gdacs.NewClient(cfg.FetchTimeout, logger),
		Trade:     worldbank.NewClient(cfg.FetchTimeout, logger),
		News:      newsapi.NewClient(cfg.NewsAPIKey, cfg.FetchTimeout, nil, logger),
		Market:    yahoofinance.NewClient(cfg.FetchTimeout, logger),
	}
	collector := orchestrator.New(sources, cfg.FetchTimeout, cfg.MaxConcurrentSubjects, nil, logger, metrics)

	scorer := risk.NewScorer(weights, nil)
	builder := assessment.NewBuilder(nil)
	publisher := kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaSinkTopic, logger)

	runner := cycle.NewRunner(subjects, collector, scorer, builder, store, publisher, nil, logger, metrics)

	srv := httpapi.NewServer(cfg.HTTPAddr, subjects, runner, store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Run one cycle immediately so the service is ready without waiting for
	// the first scheduled tick, then follow the configured schedule.
	go func() {
		if err := runner.RunCycle(ctx); err != nil {
			logger.Error("initial assessment cycle failed", "error", err)
		}
	}()

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.CycleSchedule, func() {
		if err := runner.RunCycle(ctx); err != nil {
			logger.Error("assessment cycle failed", "error", err)
		}
	})
	if err != nil {
		logger.Error("invalid cycle schedule", "schedule", cfg.CycleSchedule, "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	logger.Info("cycle scheduler started", "schedule", cfg.CycleSchedule)

	<-ctx.Done()
	logger.Info("shutting down")

	cronCtx := scheduler.Stop()
	<-cronCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if err := store.Close(); err != nil {
		logger.Error("store close error", "error", err)
	}

	logger.Info("shutdown complete")
}
