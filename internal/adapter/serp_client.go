package adapter

import (
	"context"
	"net/url"
	"time"

	"github.com/seo-dashboard/internal/config"
	"github.com/seo-dashboard/internal/models"
)

// SERPClient fetches tracked keyword positions from the rank tracking provider
type SERPClient struct {
	api *apiClient
}

// NewSERPClient creates a new rank tracking provider client
func NewSERPClient(cfg *config.ProviderConfig) *SERPClient {
	return &SERPClient{api: newAPIClient("serp", cfg)}
}

// serpRanking is the provider's wire shape for one tracked keyword
type serpRanking struct {
	Keyword      string `json:"keyword"`
	Engine       string `json:"engine"`
	Position     int    `json:"position"`
	SearchVolume int    `json:"search_volume"`
	URL          string `json:"url"`
	CheckedAt    int64  `json:"checked_at"` // unix seconds
}

type serpResponse struct {
	Domain   string        `json:"domain"`
	Rankings []serpRanking `json:"rankings"`
}

// FetchRankings returns the current positions for all keywords tracked for
// the domain, normalized into the canonical row shape.
func (c *SERPClient) FetchRankings(ctx context.Context, domain string) ([]models.RankedKeyword, error) {
	query := url.Values{}
	query.Set("domain", domain)

	var resp serpResponse
	if err := c.api.getJSON(ctx, "/v3/rankings", query, &resp); err != nil {
		return nil, err
	}

	keywords := make([]models.RankedKeyword, 0, len(resp.Rankings))
	for _, r := range resp.Rankings {
		engine := r.Engine
		if engine == "" {
			engine = "google"
		}
		checkedAt := time.Unix(r.CheckedAt, 0).UTC()
		if r.CheckedAt == 0 {
			checkedAt = time.Now().UTC()
		}
		keywords = append(keywords, models.RankedKeyword{
			Keyword:      r.Keyword,
			SearchEngine: engine,
			Position:     r.Position,
			SearchVolume: r.SearchVolume,
			RankingURL:   r.URL,
			CheckedAt:    checkedAt,
		})
	}

	return keywords, nil
}
