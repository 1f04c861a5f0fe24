package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/seo-dashboard/internal/models"
)

// KeywordRepository handles ranked keyword persistence
type KeywordRepository struct {
	db *PostgresDB
}

// NewKeywordRepository creates a new keyword repository
func NewKeywordRepository(db *PostgresDB) *KeywordRepository {
	return &KeywordRepository{db: db}
}

// LatestWrite returns the most recent updated_at for a tenant's ranked
// keywords, or nil when no rows exist.
func (r *KeywordRepository) LatestWrite(ctx context.Context, tenantID string) (*time.Time, error) {
	return latestWrite(ctx, r.db, "ranked_keywords", tenantID)
}

// UpsertRankings writes the latest positions by natural key
// (tenant, keyword, search engine). An existing row's position moves to
// previous_position before being replaced, so rank deltas survive refreshes.
func (r *KeywordRepository) UpsertRankings(ctx context.Context, tenantID string, keywords []models.RankedKeyword) (int, error) {
	query := `
		INSERT INTO ranked_keywords (tenant_id, keyword, search_engine, position, previous_position, search_volume, ranking_url, checked_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (tenant_id, keyword, search_engine) DO UPDATE
		SET previous_position = ranked_keywords.position,
			position = EXCLUDED.position,
			search_volume = EXCLUDED.search_volume,
			ranking_url = EXCLUDED.ranking_url,
			checked_at = EXCLUDED.checked_at,
			updated_at = NOW()
	`

	written := 0
	for i := range keywords {
		kw := &keywords[i]
		tag, err := r.db.Pool().Exec(ctx, query,
			tenantID,
			kw.Keyword,
			kw.SearchEngine,
			kw.Position,
			kw.Position,
			kw.SearchVolume,
			kw.RankingURL,
			kw.CheckedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert keyword %q: %w", kw.Keyword, err)
		}
		written += int(tag.RowsAffected())
	}

	return written, nil
}

// CountByTenant returns the number of ranked keyword rows for a tenant
func (r *KeywordRepository) CountByTenant(ctx context.Context, tenantID string) (int, error) {
	var count int
	err := r.db.Pool().QueryRow(ctx,
		`SELECT COUNT(*) FROM ranked_keywords WHERE tenant_id = $1`, tenantID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count keywords: %w", err)
	}
	return count, nil
}
