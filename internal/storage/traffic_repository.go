package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/seo-dashboard/internal/models"
)

// TrafficRepository handles traffic source and top page persistence
type TrafficRepository struct {
	db *PostgresDB
}

// NewTrafficRepository creates a new traffic repository
func NewTrafficRepository(db *PostgresDB) *TrafficRepository {
	return &TrafficRepository{db: db}
}

// LatestWrite returns the most recent updated_at across traffic sources for
// a tenant, or nil when no rows exist.
func (r *TrafficRepository) LatestWrite(ctx context.Context, tenantID string) (*time.Time, error) {
	return latestWrite(ctx, r.db, "traffic_sources", tenantID)
}

// LatestTopPageWrite returns the most recent updated_at across top pages
func (r *TrafficRepository) LatestTopPageWrite(ctx context.Context, tenantID string) (*time.Time, error) {
	return latestWrite(ctx, r.db, "top_pages", tenantID)
}

// UpsertSources writes daily traffic source stats by natural key
// (tenant, source, stat date)
func (r *TrafficRepository) UpsertSources(ctx context.Context, tenantID string, sources []models.TrafficSource) (int, error) {
	query := `
		INSERT INTO traffic_sources (tenant_id, source, stat_date, sessions, users, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (tenant_id, source, stat_date) DO UPDATE
		SET sessions = EXCLUDED.sessions,
			users = EXCLUDED.users,
			updated_at = NOW()
	`

	written := 0
	for i := range sources {
		src := &sources[i]
		tag, err := r.db.Pool().Exec(ctx, query,
			tenantID,
			src.Source,
			src.StatDate,
			src.Sessions,
			src.Users,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert traffic source %q: %w", src.Source, err)
		}
		written += int(tag.RowsAffected())
	}

	return written, nil
}

// UpsertTopPages writes daily top page stats by natural key
// (tenant, url, stat date)
func (r *TrafficRepository) UpsertTopPages(ctx context.Context, tenantID string, pages []models.TopPage) (int, error) {
	query := `
		INSERT INTO top_pages (tenant_id, url, stat_date, pageviews, entrances, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (tenant_id, url, stat_date) DO UPDATE
		SET pageviews = EXCLUDED.pageviews,
			entrances = EXCLUDED.entrances,
			updated_at = NOW()
	`

	written := 0
	for i := range pages {
		page := &pages[i]
		tag, err := r.db.Pool().Exec(ctx, query,
			tenantID,
			page.URL,
			page.StatDate,
			page.Pageviews,
			page.Entrances,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert top page %q: %w", page.URL, err)
		}
		written += int(tag.RowsAffected())
	}

	return written, nil
}
