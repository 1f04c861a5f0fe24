package adapter

import (
	"context"
	"net/url"
	"time"

	"github.com/seo-dashboard/internal/config"
	"github.com/seo-dashboard/internal/models"
)

// BacklinkClient fetches the backlink profile from the backlink index provider
type BacklinkClient struct {
	api *apiClient
}

// NewBacklinkClient creates a new backlink provider client
func NewBacklinkClient(cfg *config.ProviderConfig) *BacklinkClient {
	return &BacklinkClient{api: newAPIClient("backlinks", cfg)}
}

// backlinkRow is the provider's wire shape for one inbound link
type backlinkRow struct {
	SourceURL    string `json:"source_url"`
	TargetURL    string `json:"target_url"`
	DomainRating int    `json:"domain_rating"`
	NoFollow     bool   `json:"nofollow"`
	FirstSeen    int64  `json:"first_seen"` // unix seconds
}

type backlinkResponse struct {
	Domain    string        `json:"domain"`
	Backlinks []backlinkRow `json:"backlinks"`
}

type anchorResponse struct {
	Anchors []struct {
		SourceURL string `json:"source_url"`
		Text      string `json:"text"`
	} `json:"anchors"`
}

// FetchBacklinks returns the provider's current view of the domain's inbound
// links. Every returned row carries the FirstSeenAt provider marker.
func (c *BacklinkClient) FetchBacklinks(ctx context.Context, domain string) ([]models.Backlink, error) {
	query := url.Values{}
	query.Set("target", domain)
	query.Set("mode", "exact")

	var resp backlinkResponse
	if err := c.api.getJSON(ctx, "/v2/backlinks", query, &resp); err != nil {
		return nil, err
	}

	links := make([]models.Backlink, 0, len(resp.Backlinks))
	for _, row := range resp.Backlinks {
		firstSeen := time.Unix(row.FirstSeen, 0).UTC()
		if row.FirstSeen == 0 {
			firstSeen = time.Now().UTC()
		}
		links = append(links, models.Backlink{
			SourceURL:    row.SourceURL,
			TargetURL:    row.TargetURL,
			DomainRating: row.DomainRating,
			DoFollow:     !row.NoFollow,
			FirstSeenAt:  &firstSeen,
		})
	}

	return links, nil
}

// FetchAnchorTexts returns anchor text per source URL. This is enrichment
// data on a separate billable endpoint; callers persist without it when the
// call fails.
func (c *BacklinkClient) FetchAnchorTexts(ctx context.Context, domain string) (map[string]string, error) {
	query := url.Values{}
	query.Set("target", domain)

	var resp anchorResponse
	if err := c.api.getJSON(ctx, "/v2/anchors", query, &resp); err != nil {
		return nil, err
	}

	anchors := make(map[string]string, len(resp.Anchors))
	for _, a := range resp.Anchors {
		anchors[a.SourceURL] = a.Text
	}

	return anchors, nil
}
