package adapter

import (
	"context"
	"net/url"
	"time"

	"github.com/seo-dashboard/internal/config"
	"github.com/seo-dashboard/internal/models"
)

// AnalyticsClient fetches traffic and metric data from the analytics
// provider. One client serves both the traffic resource (sources, top pages)
// and the analytics resource (daily metric events).
type AnalyticsClient struct {
	api *apiClient
}

// NewAnalyticsClient creates a new analytics provider client
func NewAnalyticsClient(cfg *config.ProviderConfig) *AnalyticsClient {
	return &AnalyticsClient{api: newAPIClient("analytics", cfg)}
}

const statDateLayout = "2006-01-02"

type trafficSourceRow struct {
	Source   string `json:"source"`
	Date     string `json:"date"`
	Sessions int    `json:"sessions"`
	Users    int    `json:"users"`
}

type trafficResponse struct {
	PropertyID string             `json:"property_id"`
	Rows       []trafficSourceRow `json:"rows"`
}

type topPageRow struct {
	URL       string `json:"url"`
	Date      string `json:"date"`
	Pageviews int    `json:"pageviews"`
	Entrances int    `json:"entrances"`
}

type topPagesResponse struct {
	Rows []topPageRow `json:"rows"`
}

type metricRow struct {
	Metric string  `json:"metric"`
	Date   string  `json:"date"`
	Value  float64 `json:"value"`
	AsOf   int64   `json:"as_of"` // unix seconds
}

type metricsResponse struct {
	Rows []metricRow `json:"rows"`
}

// FetchTrafficSources returns per-day session counts by channel since the
// given date
func (c *AnalyticsClient) FetchTrafficSources(ctx context.Context, propertyID string, since time.Time) ([]models.TrafficSource, error) {
	query := url.Values{}
	query.Set("property", propertyID)
	query.Set("since", since.UTC().Format(statDateLayout))

	var resp trafficResponse
	if err := c.api.getJSON(ctx, "/v1/traffic/sources", query, &resp); err != nil {
		return nil, err
	}

	sources := make([]models.TrafficSource, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		statDate, err := time.Parse(statDateLayout, row.Date)
		if err != nil {
			continue // provider occasionally emits summary rows without a date
		}
		sources = append(sources, models.TrafficSource{
			Source:   row.Source,
			StatDate: statDate,
			Sessions: row.Sessions,
			Users:    row.Users,
		})
	}

	return sources, nil
}

// FetchTopPages returns per-day landing page stats since the given date
func (c *AnalyticsClient) FetchTopPages(ctx context.Context, propertyID string, since time.Time) ([]models.TopPage, error) {
	query := url.Values{}
	query.Set("property", propertyID)
	query.Set("since", since.UTC().Format(statDateLayout))

	var resp topPagesResponse
	if err := c.api.getJSON(ctx, "/v1/traffic/pages", query, &resp); err != nil {
		return nil, err
	}

	pages := make([]models.TopPage, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		statDate, err := time.Parse(statDateLayout, row.Date)
		if err != nil {
			continue
		}
		pages = append(pages, models.TopPage{
			URL:       row.URL,
			StatDate:  statDate,
			Pageviews: row.Pageviews,
			Entrances: row.Entrances,
		})
	}

	return pages, nil
}

// FetchMetrics returns daily metric events since the given date
func (c *AnalyticsClient) FetchMetrics(ctx context.Context, propertyID string, since time.Time) ([]models.AnalyticsEvent, error) {
	query := url.Values{}
	query.Set("property", propertyID)
	query.Set("since", since.UTC().Format(statDateLayout))

	var resp metricsResponse
	if err := c.api.getJSON(ctx, "/v1/metrics/daily", query, &resp); err != nil {
		return nil, err
	}

	events := make([]models.AnalyticsEvent, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		eventDate, err := time.Parse(statDateLayout, row.Date)
		if err != nil {
			continue
		}
		eventTime := time.Unix(row.AsOf, 0).UTC()
		if row.AsOf == 0 {
			eventTime = time.Now().UTC()
		}
		events = append(events, models.AnalyticsEvent{
			Metric:    row.Metric,
			EventDate: eventDate,
			Value:     row.Value,
			EventTime: eventTime,
		})
	}

	return events, nil
}
