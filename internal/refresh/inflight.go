package refresh

import (
	"context"
	"fmt"
	"sync"

	"github.com/seo-dashboard/internal/types"
)

// Operation is one fetch+persist cycle executed under a lease
type Operation func(ctx context.Context) (*types.Summary, error)

// lease represents one in-progress refresh. Waiters block on done and then
// read the shared result.
type lease struct {
	done    chan struct{}
	summary *types.Summary
	err     error
}

// Registry deduplicates concurrent refreshes per resource key. The first
// caller for a key runs the operation; concurrent callers for the same key
// attach to the pending lease and receive the same result, success or
// failure. Keys are independent.
//
// The registry is process-local by design. Running multiple instances of the
// service does not share lease state; see DESIGN.md for the substitution
// path to a distributed lock.
type Registry struct {
	mu       sync.Mutex
	inflight map[string]*lease
}

// NewRegistry creates an empty lease registry
func NewRegistry() *Registry {
	return &Registry{inflight: make(map[string]*lease)}
}

// RunExclusive executes op under the key's lease, creating one if none is
// pending. The operation is detached from the caller's cancellation: once
// started it runs to completion, and an abandoned caller does not kill the
// refresh for the callers still attached. The lease is removed when the
// operation finishes, so a later call starts a fresh cycle.
func (r *Registry) RunExclusive(ctx context.Context, key types.ResourceKey, op Operation) (*types.Summary, error) {
	k := key.String()

	r.mu.Lock()
	if existing, ok := r.inflight[k]; ok {
		r.mu.Unlock()
		return r.wait(ctx, existing)
	}

	l := &lease{done: make(chan struct{})}
	r.inflight[k] = l
	r.mu.Unlock()

	runCtx := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				l.err = fmt.Errorf("refresh operation panicked: %v", rec)
			}
			// remove before signaling so a caller woken by done always
			// starts a brand-new cycle if it retries
			r.mu.Lock()
			delete(r.inflight, k)
			r.mu.Unlock()
			close(l.done)
		}()
		l.summary, l.err = op(runCtx)
	}()

	return r.wait(ctx, l)
}

// wait blocks until the lease completes or the caller gives up. Giving up
// detaches the caller only; the operation keeps running.
func (r *Registry) wait(ctx context.Context, l *lease) (*types.Summary, error) {
	select {
	case <-l.done:
		return l.summary, l.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// InflightCount returns the number of pending leases
func (r *Registry) InflightCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inflight)
}
