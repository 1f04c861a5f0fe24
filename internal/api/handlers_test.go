package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/seo-dashboard/internal/errors"
	"github.com/seo-dashboard/internal/types"
)

type fakeTrigger struct {
	result    *types.RefreshResult
	err       error
	lastForce bool
	calls     int
}

func (f *fakeTrigger) Refresh(ctx context.Context, tenantID string, resource types.ResourceType, force bool) (*types.RefreshResult, error) {
	f.calls++
	f.lastForce = force
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeSummaries struct {
	summary *types.Summary
	found   bool
	err     error
}

func (f *fakeSummaries) GetSummary(ctx context.Context, key types.ResourceKey) (*types.Summary, bool, error) {
	return f.summary, f.found, f.err
}

func newTestServer(trigger RefreshTrigger, summaries SummaryReader) *Server {
	return NewServer(&ServerConfig{Host: "127.0.0.1", Port: "0"}, trigger, summaries, nil, nil, nil)
}

func doRequest(s *Server, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleRefresh(t *testing.T) {
	refreshedAt := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	trigger := &fakeTrigger{result: &types.RefreshResult{
		Skipped:         false,
		LastRefreshedAt: &refreshedAt,
		ItemsWritten:    12,
		RunID:           "run-9",
	}}
	s := newTestServer(trigger, &fakeSummaries{})

	rec := doRequest(s, http.MethodPost, "/api/v1/tenants/client-42/refresh/backlinks")
	require.Equal(t, http.StatusOK, rec.Code)

	var result types.RefreshResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.False(t, result.Skipped)
	assert.Equal(t, 12, result.ItemsWritten)
	assert.Equal(t, "run-9", result.RunID)
	assert.False(t, trigger.lastForce)
}

func TestHandleRefreshForceFlag(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantForce  bool
	}{
		{"force true", "?force=true", http.StatusOK, true},
		{"force false", "?force=false", http.StatusOK, false},
		{"force omitted", "", http.StatusOK, false},
		{"force garbage", "?force=banana", http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trigger := &fakeTrigger{result: &types.RefreshResult{}}
			s := newTestServer(trigger, &fakeSummaries{})

			rec := doRequest(s, http.MethodPost, "/api/v1/tenants/client-42/refresh/keywords"+tt.query)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantForce, trigger.lastForce)
			} else {
				assert.Equal(t, 0, trigger.calls)
			}
		})
	}
}

func TestHandleRefreshUnknownResource(t *testing.T) {
	trigger := &fakeTrigger{}
	s := newTestServer(trigger, &fakeSummaries{})

	rec := doRequest(s, http.MethodPost, "/api/v1/tenants/client-42/refresh/widgets")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, trigger.calls)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
}

func TestHandleRefreshErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "unknown tenant",
			err:        apperrors.NewNotFoundError("tenant", "ghost"),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "provider failure",
			err:        apperrors.NewProviderFetchError("serp-api", nil),
			wantStatus: http.StatusBadGateway,
			wantCode:   "PROVIDER_FETCH_FAILED",
		},
		{
			name:       "provider timeout",
			err:        apperrors.NewProviderTimeoutError("backlink-api"),
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   "PROVIDER_TIMEOUT",
		},
		{
			name:       "stale check failure",
			err:        apperrors.NewStaleCheckError("client-42|backlinks", nil),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "STALE_CHECK_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeTrigger{err: tt.err}, &fakeSummaries{})

			rec := doRequest(s, http.MethodPost, "/api/v1/tenants/client-42/refresh/backlinks")
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestHandleRefreshStatus(t *testing.T) {
	summary := &types.Summary{
		RunID:           "run-7",
		ItemsWritten:    30,
		LastRefreshedAt: time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC),
	}
	s := newTestServer(&fakeTrigger{}, &fakeSummaries{summary: summary, found: true})

	rec := doRequest(s, http.MethodGet, "/api/v1/tenants/client-42/refresh/backlinks/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var got types.Summary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "run-7", got.RunID)
	assert.Equal(t, 30, got.ItemsWritten)
}

func TestHandleRefreshStatusNotRecorded(t *testing.T) {
	s := newTestServer(&fakeTrigger{}, &fakeSummaries{found: false})

	rec := doRequest(s, http.MethodGet, "/api/v1/tenants/client-42/refresh/backlinks/status")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleHealthNoPingers(t *testing.T) {
	s := newTestServer(&fakeTrigger{}, &fakeSummaries{})

	rec := doRequest(s, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler blew up")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
