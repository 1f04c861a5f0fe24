package models

import "time"

// TrafficSource represents one day's session count for a traffic channel.
// Natural key: (tenant_id, source, stat_date).
type TrafficSource struct {
	TenantID  string    `json:"tenantId"`
	Source    string    `json:"source"` // organic, direct, referral, social, paid
	StatDate  time.Time `json:"statDate"`
	Sessions  int       `json:"sessions"`
	Users     int       `json:"users"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TopPage represents one day's traffic for a single landing page.
// Natural key: (tenant_id, url, stat_date).
type TopPage struct {
	TenantID  string    `json:"tenantId"`
	URL       string    `json:"url"`
	StatDate  time.Time `json:"statDate"`
	Pageviews int       `json:"pageviews"`
	Entrances int       `json:"entrances"`
	UpdatedAt time.Time `json:"updatedAt"`
}
