package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/seo-dashboard/internal/errors"
	"github.com/seo-dashboard/internal/config"
)

func newTestSERPClient(url string) *SERPClient {
	return NewSERPClient(&config.ProviderConfig{
		BaseURL:           url,
		APIKey:            "test-key",
		Timeout:           5 * time.Second,
		RequestsPerSecond: 100,
	})
}

func TestFetchRankings(t *testing.T) {
	var gotPath, gotAuth, gotDomain string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotDomain = r.URL.Query().Get("domain")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"domain": "acme.example",
			"rankings": [
				{"keyword": "widgets", "engine": "google", "position": 4, "search_volume": 880, "url": "https://acme.example/widgets", "checked_at": 1756100000},
				{"keyword": "best widgets", "position": 11, "search_volume": 320, "url": "https://acme.example/", "checked_at": 0}
			]
		}`))
	}))
	defer server.Close()

	client := newTestSERPClient(server.URL)
	keywords, err := client.FetchRankings(context.Background(), "acme.example")
	require.NoError(t, err)

	assert.Equal(t, "/v3/rankings", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "acme.example", gotDomain)

	require.Len(t, keywords, 2)
	assert.Equal(t, "widgets", keywords[0].Keyword)
	assert.Equal(t, "google", keywords[0].SearchEngine)
	assert.Equal(t, 4, keywords[0].Position)
	assert.Equal(t, time.Unix(1756100000, 0).UTC(), keywords[0].CheckedAt)

	// missing engine defaults, zero checked_at gets a current timestamp
	assert.Equal(t, "google", keywords[1].SearchEngine)
	assert.WithinDuration(t, time.Now(), keywords[1].CheckedAt, time.Minute)
}

func TestFetchRankingsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestSERPClient(server.URL)
	_, err := client.FetchRankings(context.Background(), "acme.example")

	require.Error(t, err)
	assert.Equal(t, apperrors.CategoryProvider, apperrors.CategoryOf(err))
	assert.Contains(t, err.Error(), "429")
}

func TestFetchRankingsMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rankings": [`))
	}))
	defer server.Close()

	client := newTestSERPClient(server.URL)
	_, err := client.FetchRankings(context.Background(), "acme.example")

	require.Error(t, err)
	assert.Equal(t, apperrors.CategoryProvider, apperrors.CategoryOf(err))
	assert.Contains(t, err.Error(), "malformed payload")
}

func TestBacklinkClientNormalization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/backlinks":
			_, _ = w.Write([]byte(`{"backlinks": [
				{"source_url": "https://blog.example/a", "target_url": "https://acme.example/", "domain_rating": 61, "nofollow": false, "first_seen": 1755000000},
				{"source_url": "https://spam.example/b", "target_url": "https://acme.example/", "domain_rating": 3, "nofollow": true, "first_seen": 1755100000}
			]}`))
		case "/v2/anchors":
			_, _ = w.Write([]byte(`{"anchors": [{"source_url": "https://blog.example/a", "text": "great widgets"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewBacklinkClient(&config.ProviderConfig{
		BaseURL:           server.URL,
		Timeout:           5 * time.Second,
		RequestsPerSecond: 100,
	})

	links, err := client.FetchBacklinks(context.Background(), "acme.example")
	require.NoError(t, err)
	require.Len(t, links, 2)

	// every provider row carries the provider marker
	for _, link := range links {
		require.NotNil(t, link.FirstSeenAt)
	}
	assert.True(t, links[0].DoFollow)
	assert.False(t, links[1].DoFollow)

	anchors, err := client.FetchAnchorTexts(context.Background(), "acme.example")
	require.NoError(t, err)
	assert.Equal(t, "great widgets", anchors["https://blog.example/a"])
}

func TestProviderTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewSERPClient(&config.ProviderConfig{
		BaseURL:           server.URL,
		Timeout:           20 * time.Millisecond,
		RequestsPerSecond: 100,
	})

	_, err := client.FetchRankings(context.Background(), "acme.example")
	require.Error(t, err)

	var ce *apperrors.CategorizedError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "PROVIDER_TIMEOUT", ce.Code)
}
