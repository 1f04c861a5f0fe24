// Package refresh implements the refresh coordination layer: freshness
// checks against the persistent store, the TTL policy deciding when a
// billable provider fetch is allowed, in-flight deduplication so at most one
// fetch runs per resource, and the fetch+persist pipeline itself.
package refresh

import (
	"context"
	"time"

	apperrors "github.com/seo-dashboard/internal/errors"
	"github.com/seo-dashboard/internal/logging"
	"github.com/seo-dashboard/internal/storage"
	"github.com/seo-dashboard/internal/types"
)

// SourceTimestamps answers "when was this source last written for this
// tenant". Implemented by storage.FreshnessStore.
type SourceTimestamps interface {
	LatestWrite(ctx context.Context, tenantID, source string) (*time.Time, error)
}

// TimestampCache is an optional short-TTL cache in front of the store.
// Implemented by storage.RedisCache.
type TimestampCache interface {
	GetTimestamp(ctx context.Context, key types.ResourceKey) (*time.Time, bool, error)
	SetTimestamp(ctx context.Context, key types.ResourceKey, ts *time.Time, ttl time.Duration) error
	InvalidateTimestamp(ctx context.Context, key types.ResourceKey) error
}

// resourceSources declares which persisted tables back each resource type.
// Composite resources take the max over several tables. Adding a resource
// type is a change here, not a new ad hoc query.
var resourceSources = map[types.ResourceType][]string{
	types.ResourceBacklinks: {storage.SourceBacklinks},
	types.ResourceKeywords:  {storage.SourceRankedKeywords},
	types.ResourceTraffic:   {storage.SourceTrafficSources, storage.SourceTopPages},
	types.ResourceAnalytics: {storage.SourceAnalytics},
	types.ResourceDashboard: {
		storage.SourceBacklinks,
		storage.SourceRankedKeywords,
		storage.SourceTrafficSources,
		storage.SourceTopPages,
	},
}

// Oracle classifies a resource as fresh or stale from the persistent store's
// write timestamps. It has no side effects beyond its read-through cache and
// is safe for concurrent use.
type Oracle struct {
	store    SourceTimestamps
	cache    TimestampCache
	cacheTTL time.Duration
	now      func() time.Time
}

// NewOracle creates a freshness oracle. cache may be nil to disable caching.
func NewOracle(store SourceTimestamps, cache TimestampCache, cacheTTL time.Duration) *Oracle {
	return &Oracle{
		store:    store,
		cache:    cache,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// LastUpdatedAt returns the most recent write timestamp across the sources
// backing the resource, or nil when nothing has ever been fetched.
func (o *Oracle) LastUpdatedAt(ctx context.Context, key types.ResourceKey) (*time.Time, error) {
	sources, ok := resourceSources[key.Resource]
	if !ok {
		return nil, apperrors.NewInvalidParameterError("resource", "unknown resource type "+string(key.Resource))
	}

	if o.cache != nil {
		ts, hit, err := o.cache.GetTimestamp(ctx, key)
		if err != nil {
			// cache trouble never blocks a freshness check
			logging.FromContext(ctx).WithError(err).Warn("freshness cache read failed")
		} else if hit {
			return ts, nil
		}
	}

	var latest *time.Time
	for _, source := range sources {
		ts, err := o.store.LatestWrite(ctx, key.TenantID, source)
		if err != nil {
			return nil, apperrors.NewStaleCheckError(key.String(), err)
		}
		if ts != nil && (latest == nil || ts.After(*latest)) {
			latest = ts
		}
	}

	if o.cache != nil && o.cacheTTL > 0 {
		if err := o.cache.SetTimestamp(ctx, key, latest, o.cacheTTL); err != nil {
			logging.FromContext(ctx).WithError(err).Warn("freshness cache write failed")
		}
	}

	return latest, nil
}

// IsFresh reports whether the resource's data is younger than ttl, along
// with the timestamp it judged by. A resource that has never been fetched is
// unconditionally stale.
func (o *Oracle) IsFresh(ctx context.Context, key types.ResourceKey, ttl time.Duration) (bool, *time.Time, error) {
	lastUpdated, err := o.LastUpdatedAt(ctx, key)
	if err != nil {
		return false, nil, err
	}
	if lastUpdated == nil {
		return false, nil, nil
	}
	return o.now().Sub(*lastUpdated) < ttl, lastUpdated, nil
}
