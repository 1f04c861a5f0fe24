package refresh

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/seo-dashboard/internal/errors"
	"github.com/seo-dashboard/internal/storage"
	"github.com/seo-dashboard/internal/types"
)

// fakeRunner counts pipeline invocations and can block to let callers pile up
type fakeRunner struct {
	invocations atomic.Int32
	started     chan struct{}
	release     chan struct{}
	summary     *types.Summary
	err         error
}

func (f *fakeRunner) Refresh(ctx context.Context, key types.ResourceKey) (*types.Summary, error) {
	if f.invocations.Add(1) == 1 && f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

func newCoordinator(store *fakeSourceTimes, runner Runner, now time.Time) *Coordinator {
	oracle := NewOracle(store, nil, 0)
	oracle.now = func() time.Time { return now }
	policy := NewPolicy(oracle, testRefreshConfig())
	return NewCoordinator(&fakeTenantStore{tenant: testTenant()}, policy, NewRegistry(), runner)
}

func TestCoordinatorSkipsFreshResource(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	last := now.Add(-2 * time.Hour)
	store := &fakeSourceTimes{times: map[string]*time.Time{
		storage.SourceBacklinks: &last,
	}}
	runner := &fakeRunner{}
	coordinator := newCoordinator(store, runner, now)

	result, err := coordinator.Refresh(context.Background(), "client-42", types.ResourceBacklinks, false)
	require.NoError(t, err)

	assert.True(t, result.Skipped)
	require.NotNil(t, result.NextAllowedAt)
	assert.Equal(t, last.Add(48*time.Hour), *result.NextAllowedAt)
	assert.Equal(t, int32(0), runner.invocations.Load())
}

func TestCoordinatorRefreshesStaleResource(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	store := &fakeSourceTimes{times: map[string]*time.Time{}}
	refreshedAt := now
	runner := &fakeRunner{summary: &types.Summary{RunID: "run-1", ItemsWritten: 9, LastRefreshedAt: refreshedAt}}
	coordinator := newCoordinator(store, runner, now)

	result, err := coordinator.Refresh(context.Background(), "client-42", types.ResourceBacklinks, false)
	require.NoError(t, err)

	assert.False(t, result.Skipped)
	assert.Equal(t, "run-1", result.RunID)
	assert.Equal(t, 9, result.ItemsWritten)
	require.NotNil(t, result.NextAllowedAt)
	assert.Equal(t, refreshedAt.Add(48*time.Hour), *result.NextAllowedAt)
	assert.Equal(t, int32(1), runner.invocations.Load())
}

func TestCoordinatorForceBypassesFreshness(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	last := now.Add(-time.Minute) // fresh by any TTL
	store := &fakeSourceTimes{times: map[string]*time.Time{
		storage.SourceBacklinks: &last,
	}}
	runner := &fakeRunner{summary: &types.Summary{RunID: "forced", LastRefreshedAt: now}}
	coordinator := newCoordinator(store, runner, now)

	result, err := coordinator.Refresh(context.Background(), "client-42", types.ResourceBacklinks, true)
	require.NoError(t, err)

	assert.False(t, result.Skipped)
	assert.Equal(t, int32(1), runner.invocations.Load())
}

func TestCoordinatorUnknownTenant(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	oracle := NewOracle(&fakeSourceTimes{}, nil, 0)
	oracle.now = func() time.Time { return now }
	policy := NewPolicy(oracle, testRefreshConfig())
	coordinator := NewCoordinator(
		&fakeTenantStore{err: apperrors.NewNotFoundError("tenant", "ghost")},
		policy, NewRegistry(), &fakeRunner{},
	)

	_, err := coordinator.Refresh(context.Background(), "ghost", types.ResourceBacklinks, false)
	require.Error(t, err)
	assert.Equal(t, apperrors.CategoryNotFound, apperrors.CategoryOf(err))
}

func TestCoordinatorConcurrentFailureShared(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	store := &fakeSourceTimes{times: map[string]*time.Time{}} // stale for everyone
	wantErr := apperrors.NewProviderFetchError("serp-api", nil)
	runner := &fakeRunner{
		started: make(chan struct{}),
		release: make(chan struct{}),
		err:     wantErr,
	}
	coordinator := newCoordinator(store, runner, now)

	const callers = 3
	errs := make([]error, callers)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, errs[0] = coordinator.Refresh(context.Background(), "client-42", types.ResourceKeywords, false)
	}()
	<-runner.started
	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = coordinator.Refresh(context.Background(), "client-42", types.ResourceKeywords, false)
		}(i)
	}

	close(runner.release)
	wg.Wait()

	// one billable attempt, one shared failure
	assert.Equal(t, int32(1), runner.invocations.Load())
	for i := 0; i < callers; i++ {
		require.Error(t, errs[i])
		assert.Equal(t, apperrors.CategoryProvider, apperrors.CategoryOf(errs[i]))
	}

	// a later caller starts a fresh attempt instead of inheriting the failure
	runner.release = nil
	runner.err = nil
	runner.summary = &types.Summary{RunID: "retry", LastRefreshedAt: now}
	result, err := coordinator.Refresh(context.Background(), "client-42", types.ResourceKeywords, false)
	require.NoError(t, err)
	assert.Equal(t, "retry", result.RunID)
	assert.Equal(t, int32(2), runner.invocations.Load())
}
