// Package adapter provides clients for the external SEO/analytics data
// providers. Each provider call is billable, so every client carries a local
// token-bucket throttle and a bounded request timeout; a stalled upstream can
// never hold a refresh lease indefinitely.
package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/seo-dashboard/internal/errors"
	"github.com/seo-dashboard/internal/config"
	"github.com/seo-dashboard/internal/models"
)

// RankProvider fetches tracked keyword positions for a domain
type RankProvider interface {
	FetchRankings(ctx context.Context, domain string) ([]models.RankedKeyword, error)
}

// BacklinkProvider fetches the backlink profile for a domain.
// FetchAnchorTexts is enrichment data: its failure degrades a refresh rather
// than failing it.
type BacklinkProvider interface {
	FetchBacklinks(ctx context.Context, domain string) ([]models.Backlink, error)
	FetchAnchorTexts(ctx context.Context, domain string) (map[string]string, error)
}

// TrafficProvider fetches per-day traffic sources and top pages for an
// analytics property. FetchTopPages is the optional sub-fetch.
type TrafficProvider interface {
	FetchTrafficSources(ctx context.Context, propertyID string, since time.Time) ([]models.TrafficSource, error)
	FetchTopPages(ctx context.Context, propertyID string, since time.Time) ([]models.TopPage, error)
}

// AnalyticsProvider fetches daily metric events for an analytics property
type AnalyticsProvider interface {
	FetchMetrics(ctx context.Context, propertyID string, since time.Time) ([]models.AnalyticsEvent, error)
}

// apiClient is the shared HTTP plumbing for provider clients
type apiClient struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

func newAPIClient(name string, cfg *config.ProviderConfig) *apiClient {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &apiClient{
		name:    name,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// getJSON performs a throttled GET and decodes the JSON response into v
func (c *apiClient) getJSON(ctx context.Context, path string, query url.Values, v interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return apperrors.NewProviderFetchError(c.name, err)
	}

	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return apperrors.NewProviderFetchError(c.name, err)
	}
	if query == nil {
		query = url.Values{}
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return apperrors.NewProviderFetchError(c.name, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return apperrors.NewProviderTimeoutError(c.name)
		}
		return apperrors.NewProviderFetchError(c.name, err)
	}
	defer resp.Body.Close() // nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperrors.NewProviderFetchError(c.name,
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return apperrors.NewProviderFetchError(c.name, fmt.Errorf("malformed payload: %w", err))
	}

	return nil
}
