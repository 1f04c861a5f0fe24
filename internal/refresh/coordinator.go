package refresh

import (
	"context"

	"github.com/seo-dashboard/internal/logging"
	"github.com/seo-dashboard/internal/types"
)

// Runner executes one fetch+persist cycle. Implemented by Pipeline.
type Runner interface {
	Refresh(ctx context.Context, key types.ResourceKey) (*types.Summary, error)
}

// Coordinator is the refresh trigger surface: policy → dedup → pipeline.
// Both the HTTP layer and the rotation worker call through it.
type Coordinator struct {
	tenants  TenantStore
	policy   *Policy
	registry *Registry
	runner   Runner
}

// NewCoordinator creates a refresh coordinator
func NewCoordinator(tenants TenantStore, policy *Policy, registry *Registry, runner Runner) *Coordinator {
	return &Coordinator{
		tenants:  tenants,
		policy:   policy,
		registry: registry,
		runner:   runner,
	}
}

// Refresh handles one refresh request for a tenant's resource. A fresh,
// unforced resource is skipped with NextAllowedAt populated; otherwise the
// fetch runs (or the caller attaches to the fetch already in flight) and the
// persisted summary is returned.
func (c *Coordinator) Refresh(ctx context.Context, tenantID string, resource types.ResourceType, force bool) (*types.RefreshResult, error) {
	key := types.NewResourceKey(tenantID, resource)

	tenant, err := c.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	decision, err := c.policy.ShouldRefresh(ctx, key, tenant.Class, force)
	if err != nil {
		return nil, err
	}

	if !decision.Perform {
		logging.FromContext(ctx).WithFields(map[string]interface{}{
			"tenant":   tenantID,
			"resource": string(resource),
		}).Debug("refresh skipped, still fresh")
		return &types.RefreshResult{
			Skipped:         true,
			LastRefreshedAt: decision.LastUpdatedAt,
			NextAllowedAt:   decision.NextAllowedAt,
		}, nil
	}

	summary, err := c.registry.RunExclusive(ctx, key, func(ctx context.Context) (*types.Summary, error) {
		return c.runner.Refresh(ctx, key)
	})
	if err != nil {
		return nil, err
	}

	nextAllowed := summary.LastRefreshedAt.Add(decision.TTL)
	return &types.RefreshResult{
		Skipped:         false,
		LastRefreshedAt: &summary.LastRefreshedAt,
		NextAllowedAt:   &nextAllowed,
		ItemsWritten:    summary.ItemsWritten,
		RunID:           summary.RunID,
	}, nil
}
