package refresh

import (
	"context"
	"time"

	"github.com/seo-dashboard/internal/config"
	"github.com/seo-dashboard/internal/types"
)

// Policy decides whether a refresh request should spend a billable provider
// call. It is a pure decision function aside from the read through the
// oracle.
type Policy struct {
	oracle *Oracle
	ttls   *config.RefreshConfig
	now    func() time.Time
}

// NewPolicy creates a refresh policy
func NewPolicy(oracle *Oracle, ttls *config.RefreshConfig) *Policy {
	return &Policy{
		oracle: oracle,
		ttls:   ttls,
		now:    time.Now,
	}
}

// ShouldRefresh returns the go/no-go decision for a refresh of key under the
// tenant's class. force=true always performs, without consulting the oracle;
// mutual exclusion downstream is unconditional either way. When the answer
// is no, NextAllowedAt tells the caller when a refresh would be allowed.
func (p *Policy) ShouldRefresh(ctx context.Context, key types.ResourceKey, class types.TenantClass, force bool) (types.Decision, error) {
	ttl := p.ttls.TTLFor(key.Resource, class)

	if force {
		return types.Decision{Perform: true, TTL: ttl}, nil
	}

	fresh, lastUpdated, err := p.oracle.IsFresh(ctx, key, ttl)
	if err != nil {
		// fail safe: unknown staleness never spends a billable call
		return types.Decision{}, err
	}

	decision := types.Decision{
		Perform:       !fresh,
		TTL:           ttl,
		LastUpdatedAt: lastUpdated,
	}
	if fresh && lastUpdated != nil {
		next := lastUpdated.Add(ttl)
		decision.NextAllowedAt = &next
	}

	return decision, nil
}
