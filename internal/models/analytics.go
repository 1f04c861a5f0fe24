package models

import "time"

// AnalyticsEvent represents one daily metric value from the analytics
// provider. Stored in ClickHouse; the table's ReplacingMergeTree key
// (tenant_id, metric, event_date) makes repeated refreshes idempotent.
type AnalyticsEvent struct {
	TenantID  string    `json:"tenantId"`
	Metric    string    `json:"metric"` // sessions, bounce_rate, conversions, ...
	EventDate time.Time `json:"eventDate"`
	Value     float64   `json:"value"`
	EventTime time.Time `json:"eventTime"` // provider-reported observation time
}
