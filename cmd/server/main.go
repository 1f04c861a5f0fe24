// Package main provides the API server entry point for the SEO dashboard
// refresh service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/seo-dashboard/internal/adapter"
	"github.com/seo-dashboard/internal/api"
	"github.com/seo-dashboard/internal/config"
	"github.com/seo-dashboard/internal/logging"
	"github.com/seo-dashboard/internal/refresh"
	"github.com/seo-dashboard/internal/storage"
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
	logger.Info("Refresh API server starting")

	// Backing stores
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

	coordinator := buildCoordinator(cfg, postgres, clickhouse, redis)

	server := api.NewServer(
		&api.ServerConfig{
			Host:            cfg.Server.Host,
			Port:            cfg.Server.Port,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		coordinator,
		redis,
		postgres,
		clickhouse,
		redis,
	)

	go func() {
		logger.WithField("addr", cfg.Server.Host+":"+cfg.Server.Port).Info("Listening")
		if err := server.Start(); err != nil {
			logger.WithError(err).Error("Server stopped")
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
	logger.Info("Server stopped")
}

// buildCoordinator wires the refresh coordination chain over the shared
// stores and provider clients.
func buildCoordinator(
	cfg *config.Config,
	postgres *storage.PostgresDB,
	clickhouse *storage.ClickHouseDB,
	redis *storage.RedisCache,
) *refresh.Coordinator {
	tenantRepo := storage.NewTenantRepository(postgres)
	backlinkRepo := storage.NewBacklinkRepository(postgres)
	keywordRepo := storage.NewKeywordRepository(postgres)
	trafficRepo := storage.NewTrafficRepository(postgres)
	analyticsRepo := storage.NewAnalyticsRepository(clickhouse)

	freshness := storage.NewFreshnessStore(postgres, analyticsRepo)
	oracle := refresh.NewOracle(freshness, redis, cfg.Refresh.FreshnessCacheTTL)
	policy := refresh.NewPolicy(oracle, &cfg.Refresh)

	backlinkClient := adapter.NewBacklinkClient(&cfg.Providers.Backlinks)
	serpClient := adapter.NewSERPClient(&cfg.Providers.SERP)
	analyticsClient := adapter.NewAnalyticsClient(&cfg.Providers.Analytics)

	pipeline := refresh.NewPipeline(refresh.PipelineConfig{
		Tenants:           tenantRepo,
		Backlinks:         backlinkRepo,
		Keywords:          keywordRepo,
		Traffic:           trafficRepo,
		Analytics:         analyticsRepo,
		RankProvider:      serpClient,
		BacklinkProvider:  backlinkClient,
		TrafficProvider:   analyticsClient,
		AnalyticsProvider: analyticsClient,
		Cache:             redis,
	})

	return refresh.NewCoordinator(tenantRepo, policy, refresh.NewRegistry(), pipeline)
}
