// Package main provides the background rotation worker entry point for the
// SEO dashboard refresh service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/seo-dashboard/internal/adapter"
	"github.com/seo-dashboard/internal/config"
	"github.com/seo-dashboard/internal/logging"
	"github.com/seo-dashboard/internal/refresh"
	"github.com/seo-dashboard/internal/storage"
	"github.com/seo-dashboard/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.GetGlobalLogger().Fatalf("Failed to load configuration: %v", err)
	}

	logging.InitGlobalLogger(
		logging.ParseLogLevel(cfg.Logging.Level),
		logging.ParseLogFormat(cfg.Logging.Format),
	)
	logger := logging.GetGlobalLogger()
	logger.Info("Rotation worker starting")

	if !cfg.Rotation.Enabled {
		logger.Info("Auto-refresh disabled, exiting")
		return
	}

	postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	defer postgres.Close()

	clickhouse, err := storage.NewClickHouseDB(&cfg.Database.ClickHouse)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to ClickHouse")
	}
	defer clickhouse.Close() // nolint:errcheck // shutdown

	redis, err := storage.NewRedisCache(&cfg.Database.Redis)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redis.Close() // nolint:errcheck // shutdown

	logger.Info("Database connections established")

	tenantRepo := storage.NewTenantRepository(postgres)
	backlinkRepo := storage.NewBacklinkRepository(postgres)
	keywordRepo := storage.NewKeywordRepository(postgres)
	trafficRepo := storage.NewTrafficRepository(postgres)
	analyticsRepo := storage.NewAnalyticsRepository(clickhouse)

	freshness := storage.NewFreshnessStore(postgres, analyticsRepo)
	oracle := refresh.NewOracle(freshness, redis, cfg.Refresh.FreshnessCacheTTL)
	policy := refresh.NewPolicy(oracle, &cfg.Refresh)

	analyticsClient := adapter.NewAnalyticsClient(&cfg.Providers.Analytics)
	pipeline := refresh.NewPipeline(refresh.PipelineConfig{
		Tenants:           tenantRepo,
		Backlinks:         backlinkRepo,
		Keywords:          keywordRepo,
		Traffic:           trafficRepo,
		Analytics:         analyticsRepo,
		RankProvider:      adapter.NewSERPClient(&cfg.Providers.SERP),
		BacklinkProvider:  adapter.NewBacklinkClient(&cfg.Providers.Backlinks),
		TrafficProvider:   analyticsClient,
		AnalyticsProvider: analyticsClient,
		Cache:             redis,
	})

	coordinator := refresh.NewCoordinator(tenantRepo, policy, refresh.NewRegistry(), pipeline)

	rotation, err := worker.NewRotationWorker(&worker.RotationWorkerConfig{
		Tenants:   tenantRepo,
		Refresher: coordinator,
		Rotation:  cfg.Rotation,
		Logger:    logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create rotation worker")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rotation.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to start rotation worker")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Shutting down...")
	rotation.Stop()
	logger.Info("Worker stopped")
}
