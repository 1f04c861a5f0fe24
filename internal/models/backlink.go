package models

import "time"

// Backlink represents one inbound link to a tenant's domain.
//
// FirstSeenAt is the provider marker: it is set only on rows sourced from the
// backlink provider. Rows entered manually by agency staff have no
// FirstSeenAt and must survive provider refreshes untouched.
type Backlink struct {
	TenantID     string     `json:"tenantId"`
	SourceURL    string     `json:"sourceUrl"`
	TargetURL    string     `json:"targetUrl"`
	AnchorText   string     `json:"anchorText,omitempty"`
	DomainRating int        `json:"domainRating"`
	DoFollow     bool       `json:"doFollow"`
	FirstSeenAt  *time.Time `json:"firstSeenAt,omitempty"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// IsProviderSourced reports whether the row carries the provider marker
func (b *Backlink) IsProviderSourced() bool {
	return b.FirstSeenAt != nil
}
