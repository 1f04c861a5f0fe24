package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/seo-dashboard/internal/models"
	apperrors "github.com/seo-dashboard/internal/errors"
)

// TenantRepository handles tenant persistence and the ordered pagination the
// rotation worker walks.
type TenantRepository struct {
	db *PostgresDB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *PostgresDB) *TenantRepository {
	return &TenantRepository{db: db}
}

// Create inserts a tenant record
func (r *TenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, domain, analytics_property_id, class, auto_refresh, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`

	_, err := r.db.Pool().Exec(ctx, query,
		tenant.ID,
		tenant.Name,
		tenant.Domain,
		tenant.AnalyticsPropertyID,
		tenant.Class,
		tenant.AutoRefresh,
	)
	if err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}

	return nil
}

// Get retrieves a tenant by identifier
func (r *TenantRepository) Get(ctx context.Context, id string) (*models.Tenant, error) {
	query := `
		SELECT id, name, domain, analytics_property_id, class, auto_refresh, created_at, updated_at
		FROM tenants
		WHERE id = $1
	`

	var tenant models.Tenant
	err := r.db.Pool().QueryRow(ctx, query, id).Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Domain,
		&tenant.AnalyticsPropertyID,
		&tenant.Class,
		&tenant.AutoRefresh,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("tenant", id)
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	return &tenant, nil
}

// ListEligibleAfter returns up to limit auto-refresh-enabled tenants with
// identifier strictly greater than cursor, ordered by identifier. An empty
// cursor starts from the beginning of the tenant set.
func (r *TenantRepository) ListEligibleAfter(ctx context.Context, cursor string, limit int) ([]*models.Tenant, error) {
	query := `
		SELECT id, name, domain, analytics_property_id, class, auto_refresh, created_at, updated_at
		FROM tenants
		WHERE auto_refresh = TRUE AND id > $1
		ORDER BY id ASC
		LIMIT $2
	`

	rows, err := r.db.Pool().Query(ctx, query, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		var tenant models.Tenant
		if err := rows.Scan(
			&tenant.ID,
			&tenant.Name,
			&tenant.Domain,
			&tenant.AnalyticsPropertyID,
			&tenant.Class,
			&tenant.AutoRefresh,
			&tenant.CreatedAt,
			&tenant.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, &tenant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tenants: %w", err)
	}

	return tenants, nil
}
