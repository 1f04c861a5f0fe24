package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/seo-dashboard/internal/config"
	"github.com/seo-dashboard/internal/types"
)

// RedisCache wraps the Redis client. It caches freshness timestamps for the
// oracle and stores the last refresh summary per resource for the status
// endpoint.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache connection
func NewRedisCache(cfg *config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.MaxConnections,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// NewRedisCacheFromClient wraps an existing client (used in tests with miniredis)
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Close closes the Redis connection
func (r *RedisCache) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// Client returns the underlying Redis client
func (r *RedisCache) Client() *redis.Client {
	return r.client
}

// Ping checks if Redis is reachable
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func freshnessKey(key types.ResourceKey) string {
	return "freshness:" + key.String()
}

func summaryKey(key types.ResourceKey) string {
	return "summary:" + key.String()
}

// GetTimestamp returns the cached last-write timestamp for a resource key.
// The second return value is false on a cache miss.
func (r *RedisCache) GetTimestamp(ctx context.Context, key types.ResourceKey) (*time.Time, bool, error) {
	val, err := r.client.Get(ctx, freshnessKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached timestamp: %w", err)
	}

	// "none" caches a confirmed absence so a never-fetched resource does not
	// hit the store on every freshness check
	if val == "none" {
		return nil, true, nil
	}

	ts, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return nil, false, fmt.Errorf("corrupt cached timestamp %q: %w", val, err)
	}
	return &ts, true, nil
}

// SetTimestamp caches the last-write timestamp for a resource key. A nil
// timestamp caches the absence of any record.
func (r *RedisCache) SetTimestamp(ctx context.Context, key types.ResourceKey, ts *time.Time, ttl time.Duration) error {
	val := "none"
	if ts != nil {
		val = ts.UTC().Format(time.RFC3339Nano)
	}
	if err := r.client.Set(ctx, freshnessKey(key), val, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache timestamp: %w", err)
	}
	return nil
}

// InvalidateTimestamp drops the cached timestamp for a resource key. Called
// by the pipeline after every successful persist so freshness is observed
// immediately.
func (r *RedisCache) InvalidateTimestamp(ctx context.Context, key types.ResourceKey) error {
	if err := r.client.Del(ctx, freshnessKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached timestamp: %w", err)
	}
	return nil
}

// SetSummary stores the last refresh summary for a resource key
func (r *RedisCache) SetSummary(ctx context.Context, key types.ResourceKey, summary *types.Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := r.client.Set(ctx, summaryKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store summary: %w", err)
	}
	return nil
}

// GetSummary returns the last refresh summary for a resource key, if any
func (r *RedisCache) GetSummary(ctx context.Context, key types.ResourceKey) (*types.Summary, bool, error) {
	data, err := r.client.Get(ctx, summaryKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get summary: %w", err)
	}

	var summary types.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, false, fmt.Errorf("corrupt stored summary: %w", err)
	}
	return &summary, true, nil
}
