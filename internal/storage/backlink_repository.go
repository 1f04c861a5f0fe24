package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/seo-dashboard/internal/models"
)

// BacklinkRepository handles backlink persistence.
//
// Provider-sourced rows carry a first_seen_at marker; rows without it were
// entered manually by agency staff and are never deleted or overwritten by a
// refresh.
type BacklinkRepository struct {
	db *PostgresDB
}

// NewBacklinkRepository creates a new backlink repository
func NewBacklinkRepository(db *PostgresDB) *BacklinkRepository {
	return &BacklinkRepository{db: db}
}

// LatestWrite returns the most recent updated_at for a tenant's backlinks,
// or nil when no rows exist.
func (r *BacklinkRepository) LatestWrite(ctx context.Context, tenantID string) (*time.Time, error) {
	return latestWrite(ctx, r.db, "backlinks", tenantID)
}

// Insert writes a single backlink row (used for manual entries)
func (r *BacklinkRepository) Insert(ctx context.Context, link *models.Backlink) error {
	query := `
		INSERT INTO backlinks (tenant_id, source_url, target_url, anchor_text, domain_rating, do_follow, first_seen_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`

	_, err := r.db.Pool().Exec(ctx, query,
		link.TenantID,
		link.SourceURL,
		link.TargetURL,
		link.AnchorText,
		link.DomainRating,
		link.DoFollow,
		link.FirstSeenAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert backlink: %w", err)
	}

	return nil
}

// ReplaceProviderRows replaces the tenant's provider-sourced backlinks with
// the given set inside one transaction. Manual rows are left untouched: the
// delete is scoped to rows with the provider marker, and an upsert that
// collides with a manual row's natural key does not update it.
func (r *BacklinkRepository) ReplaceProviderRows(ctx context.Context, tenantID string, links []models.Backlink) (int, error) {
	tx, err := r.db.Pool().Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck // no-op after commit

	_, err = tx.Exec(ctx,
		`DELETE FROM backlinks WHERE tenant_id = $1 AND first_seen_at IS NOT NULL`,
		tenantID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clear provider backlinks: %w", err)
	}

	upsert := `
		INSERT INTO backlinks (tenant_id, source_url, target_url, anchor_text, domain_rating, do_follow, first_seen_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (tenant_id, source_url) DO UPDATE
		SET target_url = EXCLUDED.target_url,
			anchor_text = EXCLUDED.anchor_text,
			domain_rating = EXCLUDED.domain_rating,
			do_follow = EXCLUDED.do_follow,
			first_seen_at = EXCLUDED.first_seen_at,
			updated_at = NOW()
		WHERE backlinks.first_seen_at IS NOT NULL
	`

	written := 0
	for i := range links {
		link := &links[i]
		tag, err := tx.Exec(ctx, upsert,
			tenantID,
			link.SourceURL,
			link.TargetURL,
			link.AnchorText,
			link.DomainRating,
			link.DoFollow,
			link.FirstSeenAt,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert backlink %s: %w", link.SourceURL, err)
		}
		written += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit backlink replace: %w", err)
	}

	return written, nil
}

// CountByTenant returns the number of backlink rows for a tenant
func (r *BacklinkRepository) CountByTenant(ctx context.Context, tenantID string) (int, error) {
	var count int
	err := r.db.Pool().QueryRow(ctx,
		`SELECT COUNT(*) FROM backlinks WHERE tenant_id = $1`, tenantID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count backlinks: %w", err)
	}
	return count, nil
}
