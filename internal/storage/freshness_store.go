package storage

import (
	"context"
	"fmt"
	"time"
)

// Source names recognized by the freshness store. These are the tables the
// oracle's resource map points at.
const (
	SourceBacklinks      = "backlinks"
	SourceRankedKeywords = "ranked_keywords"
	SourceTrafficSources = "traffic_sources"
	SourceTopPages       = "top_pages"
	SourceAnalytics      = "analytics_events"
)

// timestampQueries whitelists the Postgres tables the freshness store may
// touch. Table names are never interpolated from caller input.
var timestampQueries = map[string]string{
	SourceBacklinks:      `SELECT MAX(updated_at) FROM backlinks WHERE tenant_id = $1`,
	SourceRankedKeywords: `SELECT MAX(updated_at) FROM ranked_keywords WHERE tenant_id = $1`,
	SourceTrafficSources: `SELECT MAX(updated_at) FROM traffic_sources WHERE tenant_id = $1`,
	SourceTopPages:       `SELECT MAX(updated_at) FROM top_pages WHERE tenant_id = $1`,
}

// latestWrite returns MAX(updated_at) for a tenant in one whitelisted
// Postgres table, or nil when the tenant has no rows there.
func latestWrite(ctx context.Context, db *PostgresDB, source, tenantID string) (*time.Time, error) {
	query, ok := timestampQueries[source]
	if !ok {
		return nil, fmt.Errorf("unknown freshness source %q", source)
	}

	var latest *time.Time
	if err := db.Pool().QueryRow(ctx, query, tenantID).Scan(&latest); err != nil {
		return nil, fmt.Errorf("failed to query latest write for %s: %w", source, err)
	}
	return latest, nil
}

// FreshnessStore answers "when was this source last written for this tenant"
// across both backing stores.
type FreshnessStore struct {
	pg        *PostgresDB
	analytics *AnalyticsRepository
}

// NewFreshnessStore creates a freshness store over Postgres and ClickHouse
func NewFreshnessStore(pg *PostgresDB, analytics *AnalyticsRepository) *FreshnessStore {
	return &FreshnessStore{pg: pg, analytics: analytics}
}

// LatestWrite returns the most recent write timestamp for a tenant in the
// named source, or nil when nothing has been written.
func (s *FreshnessStore) LatestWrite(ctx context.Context, tenantID, source string) (*time.Time, error) {
	if source == SourceAnalytics {
		return s.analytics.LatestEventTime(ctx, tenantID)
	}
	return latestWrite(ctx, s.pg, source, tenantID)
}
