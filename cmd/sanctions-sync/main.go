package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"sanctions-sync/internal/config"
	pgRepo "sanctions-sync/internal/infra/adapter/persistence/postgres"
	"sanctions-sync/internal/infra/db"
	"sanctions-sync/internal/infra/fetcher"
	workerPkg "sanctions-sync/internal/infra/worker"
	"sanctions-sync/internal/observability/logging"
	"sanctions-sync/internal/resilience/circuitbreaker"
	"sanctions-sync/internal/usecase/sanctions"
)

func main() {
	logger := initLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := workerPkg.NewWorkerMetrics()
	cfg, err := config.LoadSyncConfig(logger, workerMetrics.ConfigMetrics)
	if err != nil {
		logger.Error("failed to load sync configuration", slog.String("error", logging.SanitizeError(err)))
		os.Exit(1)
	}
	logger.Info("sync configuration loaded",
		slog.String("ofac_sdn_url", cfg.Sources.OFACSDNURL),
		slog.String("un_consolidated_url", cfg.Sources.UNConsolidatedURL),
		slog.Bool("protect_on_failure", cfg.Sync.ProtectOnFailure),
		slog.Duration("sync_timeout", cfg.Sync.Timeout),
		slog.String("schedule", cfg.Sync.Schedule),
		slog.String("timezone", cfg.Sync.Timezone),
		slog.Duration("fetch_timeout", cfg.Fetch.Timeout),
		slog.Int("fetch_max_attempts", cfg.Fetch.MaxAttempts))

	database, err := initDatabase(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", logging.SanitizeError(err)))
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	dbBreaker := circuitbreaker.NewDBCircuitBreaker(database)
	loader := pgRepo.NewTableLoader(dbBreaker)
	downloader := fetcher.NewHTTPFetcher(fetcher.NewHTTPClient(cfg.Fetch), cfg.Fetch)

	svc := sanctions.NewService(downloader, loader, sanctions.Config{
		OFACSDNURL:        cfg.Sources.OFACSDNURL,
		UNConsolidatedURL: cfg.Sources.UNConsolidatedURL,
		ProtectOnFailure:  cfg.Sync.ProtectOnFailure,
	}, logger)

	var healthServer *workerPkg.HealthServer
	if cfg.Scheduled() {
		healthServer = workerPkg.NewHealthServer(fmt.Sprintf(":%d", cfg.Server.HealthPort), logger)
	}

	scheduler, err := workerPkg.NewScheduler(workerPkg.SchedulerConfig{
		Schedule: cfg.Sync.Schedule,
		Timezone: cfg.Sync.Timezone,
		Timeout:  cfg.Sync.Timeout,
	}, syncJob(svc), logger, workerMetrics, healthServer)
	if err != nil {
		logger.Error("failed to create scheduler", slog.Any("error", err))
		os.Exit(1)
	}

	if !cfg.Scheduled() {
		// partial failures are logged by the run; they do not change the exit code
		_ = scheduler.RunOnce(ctx)
		return
	}

	startMetricsServer(ctx, logger, cfg.Server.MetricsPort, []breakerStatus{
		{name: "download", breaker: downloader.CircuitBreaker()},
		{name: "database", breaker: dbBreaker},
	})

	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	if err := scheduler.Start(ctx); err != nil {
		logger.Error("failed to start scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}

// initLogger builds the process logger from LOG_FORMAT and LOG_LEVEL.
func initLogger() *slog.Logger {
	logger := logging.New(logging.FormatFromEnv())
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the pool described by cfg.
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	return db.Open(ctx, dsn, cfg.Pool)
}

// syncJob adapts the sync service to the worker job signature.
func syncJob(svc *sanctions.Service) workerPkg.Job {
	return func(ctx context.Context) (workerPkg.JobResult, error) {
		stats, err := svc.Run(ctx)
		if stats == nil {
			return workerPkg.JobResult{}, err
		}
		return workerPkg.JobResult{RunID: stats.RunID, TablesLoaded: stats.TablesLoaded()}, err
	}
}
