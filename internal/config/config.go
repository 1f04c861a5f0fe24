// Package config provides configuration management for the SEO dashboard
// backend. It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/seo-dashboard/internal/types"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Refresh   RefreshConfig
	Rotation  RotationConfig
	Providers ProvidersConfig
	Logging   LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Postgres   PostgresConfig
	ClickHouse ClickHouseConfig
	Redis      RedisConfig
}

// PostgresConfig holds Postgres configuration
type PostgresConfig struct {
	Host           string
	Port           string
	Database       string
	User           string
	Password       string
	MaxConnections int
}

// ClickHouseConfig holds ClickHouse configuration
type ClickHouseConfig struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host           string
	Port           string
	Password       string
	DB             int
	MaxConnections int
}

// RefreshConfig holds freshness TTLs per resource type, with a per-class
// override for premium integrations.
type RefreshConfig struct {
	TTLs              map[types.ResourceType]time.Duration
	PremiumTTLs       map[types.ResourceType]time.Duration
	FreshnessCacheTTL time.Duration
}

// TTLFor resolves the TTL for a resource type under a tenant class
func (c *RefreshConfig) TTLFor(resource types.ResourceType, class types.TenantClass) time.Duration {
	if class == types.ClassPremium {
		if ttl, ok := c.PremiumTTLs[resource]; ok {
			return ttl
		}
	}
	if ttl, ok := c.TTLs[resource]; ok {
		return ttl
	}
	return 24 * time.Hour
}

// RotationConfig holds background batch rotation configuration
type RotationConfig struct {
	Enabled   bool
	BatchSize int
	Interval  time.Duration
	Resources []types.ResourceType
}

// ProvidersConfig holds external data provider configuration
type ProvidersConfig struct {
	SERP      ProviderConfig
	Backlinks ProviderConfig
	Analytics ProviderConfig
}

// ProviderConfig holds configuration for a single external data provider
type ProviderConfig struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Rotation bounds. Each provider call is billable, so the batch knobs are
// clamped rather than trusted.
const (
	MinBatchSize = 1
	MaxBatchSize = 25

	MinRotationInterval = 10 * time.Minute
	MaxRotationInterval = 24 * time.Hour
)

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// .env file is optional - environment variables can be set directly
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Postgres: PostgresConfig{
				Host:           getEnv("POSTGRES_HOST", "localhost"),
				Port:           getEnv("POSTGRES_PORT", "5432"),
				Database:       getEnv("POSTGRES_DB", "seo_dashboard"),
				User:           getEnv("POSTGRES_USER", "dashboard"),
				Password:       getEnv("POSTGRES_PASSWORD", ""),
				MaxConnections: getEnvAsInt("POSTGRES_MAX_CONNECTIONS", 50),
			},
			ClickHouse: ClickHouseConfig{
				Host:     getEnv("CLICKHOUSE_HOST", "localhost"),
				Port:     getEnv("CLICKHOUSE_PORT", "9000"),
				Database: getEnv("CLICKHOUSE_DB", "seo_dashboard"),
				User:     getEnv("CLICKHOUSE_USER", "default"),
				Password: getEnv("CLICKHOUSE_PASSWORD", ""),
			},
			Redis: RedisConfig{
				Host:           getEnv("REDIS_HOST", "localhost"),
				Port:           getEnv("REDIS_PORT", "6379"),
				Password:       getEnv("REDIS_PASSWORD", ""),
				DB:             getEnvAsInt("REDIS_DB", 0),
				MaxConnections: getEnvAsInt("REDIS_MAX_CONNECTIONS", 50),
			},
		},
		Refresh:  loadRefreshConfig(),
		Rotation: loadRotationConfig(),
		Providers: ProvidersConfig{
			SERP: ProviderConfig{
				BaseURL:           getEnv("SERP_API_URL", "https://api.serpprovider.example"),
				APIKey:            getEnv("SERP_API_KEY", ""),
				Timeout:           getEnvAsDuration("SERP_API_TIMEOUT", 30*time.Second),
				RequestsPerSecond: getEnvAsFloat("SERP_API_RPS", 3),
			},
			Backlinks: ProviderConfig{
				BaseURL:           getEnv("BACKLINK_API_URL", "https://api.backlinkprovider.example"),
				APIKey:            getEnv("BACKLINK_API_KEY", ""),
				Timeout:           getEnvAsDuration("BACKLINK_API_TIMEOUT", 30*time.Second),
				RequestsPerSecond: getEnvAsFloat("BACKLINK_API_RPS", 2),
			},
			Analytics: ProviderConfig{
				BaseURL:           getEnv("ANALYTICS_API_URL", "https://api.analyticsprovider.example"),
				APIKey:            getEnv("ANALYTICS_API_KEY", ""),
				Timeout:           getEnvAsDuration("ANALYTICS_API_TIMEOUT", 30*time.Second),
				RequestsPerSecond: getEnvAsFloat("ANALYTICS_API_RPS", 5),
			},
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := config.Rotation.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// loadRefreshConfig loads per-resource TTLs and the premium-class overrides
func loadRefreshConfig() RefreshConfig {
	return RefreshConfig{
		TTLs: map[types.ResourceType]time.Duration{
			types.ResourceBacklinks: getEnvAsDuration("TTL_BACKLINKS", 48*time.Hour),
			types.ResourceKeywords:  getEnvAsDuration("TTL_KEYWORDS", 24*time.Hour),
			types.ResourceTraffic:   getEnvAsDuration("TTL_TRAFFIC", 24*time.Hour),
			types.ResourceAnalytics: getEnvAsDuration("TTL_ANALYTICS", 12*time.Hour),
			types.ResourceDashboard: getEnvAsDuration("TTL_DASHBOARD", 24*time.Hour),
		},
		// Premium integrations carry a longer TTL: the provider contracts
		// deliver pre-aggregated data daily, so refetching sooner only burns
		// billable calls.
		PremiumTTLs: map[types.ResourceType]time.Duration{
			types.ResourceBacklinks: getEnvAsDuration("PREMIUM_TTL_BACKLINKS", 72*time.Hour),
			types.ResourceKeywords:  getEnvAsDuration("PREMIUM_TTL_KEYWORDS", 48*time.Hour),
			types.ResourceTraffic:   getEnvAsDuration("PREMIUM_TTL_TRAFFIC", 48*time.Hour),
			types.ResourceAnalytics: getEnvAsDuration("PREMIUM_TTL_ANALYTICS", 24*time.Hour),
			types.ResourceDashboard: getEnvAsDuration("PREMIUM_TTL_DASHBOARD", 48*time.Hour),
		},
		FreshnessCacheTTL: getEnvAsDuration("FRESHNESS_CACHE_TTL", 30*time.Second),
	}
}

// loadRotationConfig loads batch rotation configuration
func loadRotationConfig() RotationConfig {
	resources := []types.ResourceType{}
	for _, name := range splitList(getEnv("AUTO_REFRESH_RESOURCES", "backlinks,keywords")) {
		if types.ValidResourceType(name) {
			resources = append(resources, types.ResourceType(name))
		}
	}

	return RotationConfig{
		Enabled:   getEnvAsBool("AUTO_REFRESH_ENABLED", true),
		BatchSize: getEnvAsInt("ROTATION_BATCH_SIZE", 5),
		Interval:  getEnvAsDuration("ROTATION_INTERVAL", time.Hour),
		Resources: resources,
	}
}

func (c *RotationConfig) validate() error {
	if c.BatchSize < MinBatchSize || c.BatchSize > MaxBatchSize {
		return fmt.Errorf("rotation batch size must be between %d and %d, got %d",
			MinBatchSize, MaxBatchSize, c.BatchSize)
	}
	if c.Interval < MinRotationInterval || c.Interval > MaxRotationInterval {
		return fmt.Errorf("rotation interval must be between %s and %s, got %s",
			MinRotationInterval, MaxRotationInterval, c.Interval)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat gets an environment variable as a float with a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool gets an environment variable as a boolean with a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
