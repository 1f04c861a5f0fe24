package models

import "time"

// RankedKeyword represents one tracked keyword position for a tenant.
// Natural key: (tenant_id, keyword, search_engine).
type RankedKeyword struct {
	TenantID     string    `json:"tenantId"`
	Keyword      string    `json:"keyword"`
	SearchEngine string    `json:"searchEngine"`
	Position     int       `json:"position"`
	PreviousPos  int       `json:"previousPosition"`
	SearchVolume int       `json:"searchVolume"`
	RankingURL   string    `json:"rankingUrl"`
	CheckedAt    time.Time `json:"checkedAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
