package models

import (
	"time"

	"github.com/seo-dashboard/internal/types"
)

// Tenant represents an agency client whose third-party data is aggregated
type Tenant struct {
	ID                  string            `json:"id"`
	Name                string            `json:"name"`
	Domain              string            `json:"domain"`
	AnalyticsPropertyID string            `json:"analyticsPropertyId"`
	Class               types.TenantClass `json:"class"`
	AutoRefresh         bool              `json:"autoRefresh"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}
