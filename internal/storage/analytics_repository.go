package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/seo-dashboard/internal/models"
)

// AnalyticsRepository handles analytics event persistence in ClickHouse.
// The table is a ReplacingMergeTree ordered by (tenant_id, metric,
// event_date), so re-inserting the same day's metrics collapses to one row
// and repeated refreshes stay idempotent.
type AnalyticsRepository struct {
	db *ClickHouseDB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *ClickHouseDB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// InsertEvents writes a batch of analytics events
func (r *AnalyticsRepository) InsertEvents(ctx context.Context, events []models.AnalyticsEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	batch, err := r.db.Conn().PrepareBatch(ctx, `
		INSERT INTO analytics_events (tenant_id, metric, event_date, value, event_time)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare analytics batch: %w", err)
	}

	for i := range events {
		ev := &events[i]
		if err := batch.Append(
			ev.TenantID,
			ev.Metric,
			ev.EventDate,
			ev.Value,
			ev.EventTime,
		); err != nil {
			return 0, fmt.Errorf("failed to append analytics event: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to send analytics batch: %w", err)
	}

	return len(events), nil
}

// LatestEventTime returns the most recent event_time for a tenant, or nil
// when no events exist.
func (r *AnalyticsRepository) LatestEventTime(ctx context.Context, tenantID string) (*time.Time, error) {
	query := `
		SELECT max(event_time), count()
		FROM analytics_events
		WHERE tenant_id = ?
	`

	var latest time.Time
	var count uint64
	if err := r.db.Conn().QueryRow(ctx, query, tenantID).Scan(&latest, &count); err != nil {
		return nil, fmt.Errorf("failed to query latest analytics event: %w", err)
	}
	if count == 0 {
		return nil, nil
	}

	return &latest, nil
}

// CountByTenant returns the collapsed row count for a tenant
func (r *AnalyticsRepository) CountByTenant(ctx context.Context, tenantID string) (int, error) {
	var count uint64
	err := r.db.Conn().QueryRow(ctx,
		`SELECT count() FROM analytics_events FINAL WHERE tenant_id = ?`, tenantID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count analytics events: %w", err)
	}
	return int(count), nil
}
