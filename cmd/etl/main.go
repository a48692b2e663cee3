// Command etl scrapes NWS current-conditions pages for the configured cities
// on a cron cadence and appends the normalized batch to BigQuery.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"cloud.google.com/go/bigquery"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	bqadapter "github.com/weatherdw/nws-conditions-etl/internal/adapter/bigquery"
	httpadapter "github.com/weatherdw/nws-conditions-etl/internal/adapter/http"
	"github.com/weatherdw/nws-conditions-etl/internal/adapter/nws"
	"github.com/weatherdw/nws-conditions-etl/internal/config"
	"github.com/weatherdw/nws-conditions-etl/internal/domain"
	"github.com/weatherdw/nws-conditions-etl/internal/observability"
	"github.com/weatherdw/nws-conditions-etl/internal/pipeline"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := bigquery.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		logger.Error("bigquery client init failed", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	fetcher := nws.NewFetcher(cfg.FetchTimeout)
	extractor := nws.NewExtractor(fetcher, domain.DefaultTargets, logger, metrics)
	normalizer := pipeline.NewNormalizer(logger, metrics)
	loader := bqadapter.NewLoader(client, cfg.DatasetID, cfg.TableID, logger)

	p := pipeline.New(extractor, normalizer, loader, logger, metrics)

	runOnce := func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("run failed", "error", err)
		}
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.CronSchedule, runOnce); err != nil {
		logger.Error("invalid cron schedule", "schedule", cfg.CronSchedule, "error", err)
		os.Exit(1)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	if cfg.RunOnStart {
		go runOnce()
	}

	scheduler.Start()
	logger.Info("scheduler started",
		"schedule", cfg.CronSchedule,
		"targets", len(domain.DefaultTargets),
		"dataset", cfg.DatasetID,
		"table", cfg.TableID,
	)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Let an in-flight run finish, but not past the shutdown deadline.
	select {
	case <-scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		logger.Warn("shutdown deadline reached with a run still in flight")
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
