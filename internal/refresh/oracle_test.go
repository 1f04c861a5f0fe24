package refresh

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/seo-dashboard/internal/errors"
	"github.com/seo-dashboard/internal/storage"
	"github.com/seo-dashboard/internal/types"
)

// fakeSourceTimes is an in-memory SourceTimestamps implementation
type fakeSourceTimes struct {
	times map[string]*time.Time // source -> latest write
	err   error
	calls int
}

func (f *fakeSourceTimes) LatestWrite(ctx context.Context, tenantID, source string) (*time.Time, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.times[source], nil
}

func ts(t time.Time) *time.Time { return &t }

func TestOracleIsFresh(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	ttl := 48 * time.Hour
	key := types.NewResourceKey("client-42", types.ResourceBacklinks)

	tests := []struct {
		name      string
		lastWrite *time.Time
		wantFresh bool
	}{
		{
			name:      "just inside ttl",
			lastWrite: ts(now.Add(-ttl + time.Second)),
			wantFresh: true,
		},
		{
			name:      "just outside ttl",
			lastWrite: ts(now.Add(-ttl - time.Second)),
			wantFresh: false,
		},
		{
			name:      "never fetched is always stale",
			lastWrite: nil,
			wantFresh: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeSourceTimes{times: map[string]*time.Time{
				storage.SourceBacklinks: tt.lastWrite,
			}}
			oracle := NewOracle(store, nil, 0)
			oracle.now = func() time.Time { return now }

			fresh, lastUpdated, err := oracle.IsFresh(context.Background(), key, ttl)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFresh, fresh)
			assert.Equal(t, tt.lastWrite, lastUpdated)
		})
	}
}

func TestOracleCompositeTakesMax(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	store := &fakeSourceTimes{times: map[string]*time.Time{
		storage.SourceBacklinks:      ts(now.Add(-40 * time.Hour)),
		storage.SourceRankedKeywords: ts(now.Add(-3 * time.Hour)),
		storage.SourceTrafficSources: ts(now.Add(-20 * time.Hour)),
		// top_pages never written
	}}
	oracle := NewOracle(store, nil, 0)
	oracle.now = func() time.Time { return now }

	key := types.NewResourceKey("client-42", types.ResourceDashboard)
	lastUpdated, err := oracle.LastUpdatedAt(context.Background(), key)
	require.NoError(t, err)
	require.NotNil(t, lastUpdated)
	assert.Equal(t, now.Add(-3*time.Hour), *lastUpdated)
}

func TestOracleUnknownResource(t *testing.T) {
	oracle := NewOracle(&fakeSourceTimes{}, nil, 0)
	_, err := oracle.LastUpdatedAt(context.Background(), types.NewResourceKey("client-42", "bogus"))
	require.Error(t, err)
}

func TestOracleStaleCheckError(t *testing.T) {
	store := &fakeSourceTimes{err: errors.New("connection refused")}
	oracle := NewOracle(store, nil, 0)

	key := types.NewResourceKey("client-42", types.ResourceBacklinks)
	_, err := oracle.LastUpdatedAt(context.Background(), key)
	require.Error(t, err)
	assert.Equal(t, apperrors.CategoryStaleCheck, apperrors.CategoryOf(err))
}

func TestOracleCachesTimestamps(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	cache := storage.NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	store := &fakeSourceTimes{times: map[string]*time.Time{
		storage.SourceBacklinks: ts(now.Add(-time.Hour)),
	}}
	oracle := NewOracle(store, cache, 30*time.Second)
	oracle.now = func() time.Time { return now }

	key := types.NewResourceKey("client-42", types.ResourceBacklinks)
	ctx := context.Background()

	_, err = oracle.LastUpdatedAt(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls)

	// second read is served from the cache
	_, err = oracle.LastUpdatedAt(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls)

	// invalidation forces a store read
	require.NoError(t, cache.InvalidateTimestamp(ctx, key))
	_, err = oracle.LastUpdatedAt(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls)
}

func TestOracleCachesAbsence(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	cache := storage.NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	store := &fakeSourceTimes{times: map[string]*time.Time{}}
	oracle := NewOracle(store, cache, 30*time.Second)

	key := types.NewResourceKey("client-42", types.ResourceKeywords)
	ctx := context.Background()

	lastUpdated, err := oracle.LastUpdatedAt(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, lastUpdated)
	assert.Equal(t, 1, store.calls)

	lastUpdated, err = oracle.LastUpdatedAt(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, lastUpdated)
	assert.Equal(t, 1, store.calls)
}
