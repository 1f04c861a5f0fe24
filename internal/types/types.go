// Package types provides common type definitions for the SEO dashboard backend.
package types

import (
	"fmt"
	"time"
)

// TenantClass represents the integration class negotiated for a tenant
type TenantClass string

const (
	// ClassStandard represents tenants on the standard data contract
	ClassStandard TenantClass = "standard"
	// ClassPremium represents tenants on a premium integration contract
	ClassPremium TenantClass = "premium"
)

// ResourceType represents a category of third-party-sourced data for a tenant
type ResourceType string

const (
	// ResourceBacklinks represents backlink profile data
	ResourceBacklinks ResourceType = "backlinks"
	// ResourceKeywords represents ranked keyword / rank tracking data
	ResourceKeywords ResourceType = "keywords"
	// ResourceTraffic represents traffic source and top page data
	ResourceTraffic ResourceType = "traffic"
	// ResourceAnalytics represents analytics metric events
	ResourceAnalytics ResourceType = "analytics"
	// ResourceDashboard represents the composite dashboard view backed by
	// several sub-resources
	ResourceDashboard ResourceType = "dashboard"
)

// ValidResourceType reports whether s names a known resource type
func ValidResourceType(s string) bool {
	switch ResourceType(s) {
	case ResourceBacklinks, ResourceKeywords, ResourceTraffic, ResourceAnalytics, ResourceDashboard:
		return true
	}
	return false
}

// ResourceKey identifies one tenant's resource for freshness lookups and
// in-flight deduplication. Immutable once constructed.
type ResourceKey struct {
	TenantID string
	Resource ResourceType
}

// NewResourceKey creates a resource key
func NewResourceKey(tenantID string, resource ResourceType) ResourceKey {
	return ResourceKey{TenantID: tenantID, Resource: resource}
}

// String returns the canonical registry key form
func (k ResourceKey) String() string {
	return fmt.Sprintf("%s|%s", k.TenantID, k.Resource)
}

// Decision is the refresh policy's verdict for a single refresh request
type Decision struct {
	Perform       bool          `json:"perform"`
	TTL           time.Duration `json:"ttl"`
	LastUpdatedAt *time.Time    `json:"lastUpdatedAt,omitempty"`
	NextAllowedAt *time.Time    `json:"nextAllowedAt,omitempty"`
}

// Summary describes one completed fetch+persist cycle
type Summary struct {
	RunID           string    `json:"runId"`
	ItemsWritten    int       `json:"itemsWritten"`
	LastRefreshedAt time.Time `json:"lastRefreshedAt"`
}

// RefreshResult is returned to refresh trigger callers (interactive or scheduled)
type RefreshResult struct {
	Skipped         bool       `json:"skipped"`
	LastRefreshedAt *time.Time `json:"lastRefreshedAt,omitempty"`
	NextAllowedAt   *time.Time `json:"nextAllowedAt,omitempty"`
	ItemsWritten    int        `json:"itemsWritten"`
	RunID           string     `json:"runId,omitempty"`
}

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}
