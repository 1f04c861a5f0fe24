// Package worker provides the background batch rotation worker that walks
// the tenant population and refreshes stale resources a bounded batch at a
// time.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/seo-dashboard/internal/config"
	"github.com/seo-dashboard/internal/logging"
	"github.com/seo-dashboard/internal/models"
	"github.com/seo-dashboard/internal/types"
)

// TenantPager pages over the eligible tenant population in stable identifier
// order. Implemented by storage.TenantRepository.
type TenantPager interface {
	ListEligibleAfter(ctx context.Context, cursor string, limit int) ([]*models.Tenant, error)
}

// Refresher triggers one refresh through the coordination chain.
// Implemented by refresh.Coordinator.
type Refresher interface {
	Refresh(ctx context.Context, tenantID string, resource types.ResourceType, force bool) (*types.RefreshResult, error)
}

// RotationWorker revisits every eligible tenant roughly evenly over many
// ticks by advancing a cursor over the ordered tenant set, a bounded batch
// per tick, wrapping around at the end. The cursor lives in process memory;
// a restart begins a new pass from the top.
type RotationWorker struct {
	tenants   TenantPager
	refresher Refresher
	resources []types.ResourceType
	interval  time.Duration
	batchSize int
	logger    *logging.Logger

	mu sync.Mutex

	// cursor is the last tenant identifier processed; empty means the next
	// batch starts from the beginning of the tenant set
	cursor  string
	running bool // a batch is executing; overlapping ticks are skipped
	started bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// RotationWorkerConfig holds configuration for a rotation worker
type RotationWorkerConfig struct {
	Tenants   TenantPager
	Refresher Refresher
	Rotation  config.RotationConfig
	Logger    *logging.Logger
}

// NewRotationWorker creates a rotation worker
func NewRotationWorker(cfg *RotationWorkerConfig) (*RotationWorker, error) {
	if cfg.Tenants == nil {
		return nil, fmt.Errorf("tenant pager cannot be nil")
	}
	if cfg.Refresher == nil {
		return nil, fmt.Errorf("refresher cannot be nil")
	}
	if len(cfg.Rotation.Resources) == 0 {
		return nil, fmt.Errorf("at least one auto-refresh resource is required")
	}
	if cfg.Rotation.BatchSize < config.MinBatchSize || cfg.Rotation.BatchSize > config.MaxBatchSize {
		return nil, fmt.Errorf("batch size must be between %d and %d, got %d",
			config.MinBatchSize, config.MaxBatchSize, cfg.Rotation.BatchSize)
	}
	if cfg.Rotation.Interval < config.MinRotationInterval || cfg.Rotation.Interval > config.MaxRotationInterval {
		return nil, fmt.Errorf("rotation interval must be between %s and %s, got %s",
			config.MinRotationInterval, config.MaxRotationInterval, cfg.Rotation.Interval)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	return &RotationWorker{
		tenants:   cfg.Tenants,
		refresher: cfg.Refresher,
		resources: cfg.Rotation.Resources,
		interval:  cfg.Rotation.Interval,
		batchSize: cfg.Rotation.BatchSize,
		logger:    logger.WithField("component", "rotation_worker"),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}, nil
}

// Start begins the rotation loop. It returns immediately; the loop runs
// until Stop is called.
func (w *RotationWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return fmt.Errorf("rotation worker already started")
	}
	w.started = true
	w.mu.Unlock()

	w.logger.WithFields(map[string]interface{}{
		"interval":   w.interval.String(),
		"batch_size": w.batchSize,
	}).Info("rotation worker starting")

	go w.loop(ctx)
	return nil
}

// Stop halts the rotation loop, waiting for an in-flight batch to finish
func (w *RotationWorker) Stop() {
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info("rotation worker stopped")
}

func (w *RotationWorker) loop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick runs one rotation batch. If a previous batch is still executing the
// tick is skipped; batches never overlap.
func (w *RotationWorker) Tick(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		w.logger.Warn("previous batch still running, skipping tick")
		return
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	w.runBatch(ctx)
}

func (w *RotationWorker) runBatch(ctx context.Context) {
	batch, err := w.tenants.ListEligibleAfter(ctx, w.Cursor(), w.batchSize)
	if err != nil {
		w.logger.WithError(err).Error("failed to load rotation batch")
		return
	}

	// wraparound: past the end of the tenant set, restart from the top so the
	// rotation is a ring
	if len(batch) == 0 && w.Cursor() != "" {
		w.setCursor("")
		batch, err = w.tenants.ListEligibleAfter(ctx, "", w.batchSize)
		if err != nil {
			w.logger.WithError(err).Error("failed to load rotation batch after wraparound")
			return
		}
	}
	if len(batch) == 0 {
		w.logger.Debug("no eligible tenants")
		return
	}

	for _, tenant := range batch {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		w.refreshTenant(ctx, tenant)

		// progress survives fresh-skips and failures alike
		w.setCursor(tenant.ID)
	}

	w.logger.WithFields(map[string]interface{}{
		"batch":  len(batch),
		"cursor": w.Cursor(),
	}).Info("rotation batch complete")
}

// refreshTenant refreshes each configured resource for one tenant. A
// per-tenant failure is logged and never aborts the batch.
func (w *RotationWorker) refreshTenant(ctx context.Context, tenant *models.Tenant) {
	logger := w.logger.WithField("tenant", tenant.ID)

	for _, resource := range w.resources {
		result, err := w.refresher.Refresh(ctx, tenant.ID, resource, false)
		if err != nil {
			logger.WithError(err).WithField("resource", string(resource)).Error("scheduled refresh failed")
			continue
		}
		if result.Skipped {
			logger.WithField("resource", string(resource)).Debug("scheduled refresh skipped, still fresh")
		}
	}
}

// Cursor returns the current rotation cursor (empty at the start of a pass)
func (w *RotationWorker) Cursor() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cursor
}

func (w *RotationWorker) setCursor(cursor string) {
	w.mu.Lock()
	w.cursor = cursor
	w.mu.Unlock()
}
