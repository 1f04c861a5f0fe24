package refresh

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/seo-dashboard/internal/errors"
	"github.com/seo-dashboard/internal/adapter"
	"github.com/seo-dashboard/internal/logging"
	"github.com/seo-dashboard/internal/models"
	"github.com/seo-dashboard/internal/types"
)

// TenantStore resolves tenant records
type TenantStore interface {
	Get(ctx context.Context, id string) (*models.Tenant, error)
}

// BacklinkStore persists provider backlink sets without touching manual rows
type BacklinkStore interface {
	ReplaceProviderRows(ctx context.Context, tenantID string, links []models.Backlink) (int, error)
}

// KeywordStore persists ranked keyword positions
type KeywordStore interface {
	UpsertRankings(ctx context.Context, tenantID string, keywords []models.RankedKeyword) (int, error)
}

// TrafficStore persists traffic source and top page stats
type TrafficStore interface {
	UpsertSources(ctx context.Context, tenantID string, sources []models.TrafficSource) (int, error)
	UpsertTopPages(ctx context.Context, tenantID string, pages []models.TopPage) (int, error)
}

// AnalyticsStore persists analytics metric events
type AnalyticsStore interface {
	InsertEvents(ctx context.Context, events []models.AnalyticsEvent) (int, error)
}

// ResultCache receives post-persist bookkeeping: freshness invalidation and
// the last refresh summary. Implemented by storage.RedisCache.
type ResultCache interface {
	InvalidateTimestamp(ctx context.Context, key types.ResourceKey) error
	SetSummary(ctx context.Context, key types.ResourceKey, summary *types.Summary) error
}

// PipelineConfig wires the pipeline's collaborators
type PipelineConfig struct {
	Tenants   TenantStore
	Backlinks BacklinkStore
	Keywords  KeywordStore
	Traffic   TrafficStore
	Analytics AnalyticsStore

	RankProvider      adapter.RankProvider
	BacklinkProvider  adapter.BacklinkProvider
	TrafficProvider   adapter.TrafficProvider
	AnalyticsProvider adapter.AnalyticsProvider

	Cache ResultCache // optional

	// Lookback window for date-ranged provider queries
	StatsLookback time.Duration
}

// Pipeline performs the fetch → normalize → upsert cycle for one resource.
// Always invoked inside Registry.RunExclusive; it assumes it is the only
// writer for its key in this process.
type Pipeline struct {
	cfg PipelineConfig
	now func() time.Time
}

// NewPipeline creates a fetch+persist pipeline
func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.StatsLookback <= 0 {
		cfg.StatsLookback = 30 * 24 * time.Hour
	}
	return &Pipeline{cfg: cfg, now: time.Now}
}

// Refresh runs one fetch+persist cycle for the key and returns its summary.
// A failed optional sub-fetch degrades the result; a failed primary fetch or
// persist fails the whole cycle and leaves prior data untouched.
func (p *Pipeline) Refresh(ctx context.Context, key types.ResourceKey) (*types.Summary, error) {
	runID := uuid.New().String()
	logger := logging.FromContext(ctx).WithFields(map[string]interface{}{
		"tenant":   key.TenantID,
		"resource": string(key.Resource),
		"run_id":   runID,
	})
	ctx = logging.WithLogger(ctx, logger)
	started := p.now()

	tenant, err := p.cfg.Tenants.Get(ctx, key.TenantID)
	if err != nil {
		return nil, err
	}

	var written int
	switch key.Resource {
	case types.ResourceBacklinks:
		written, err = p.refreshBacklinks(ctx, tenant)
	case types.ResourceKeywords:
		written, err = p.refreshKeywords(ctx, tenant)
	case types.ResourceTraffic:
		written, err = p.refreshTraffic(ctx, tenant)
	case types.ResourceAnalytics:
		written, err = p.refreshAnalytics(ctx, tenant)
	case types.ResourceDashboard:
		written, err = p.refreshDashboard(ctx, tenant)
	default:
		return nil, apperrors.NewInvalidParameterError("resource", "unknown resource type "+string(key.Resource))
	}
	if err != nil {
		logger.WithError(err).Error("refresh failed")
		return nil, err
	}

	summary := &types.Summary{
		RunID:           runID,
		ItemsWritten:    written,
		LastRefreshedAt: p.now().UTC(),
	}

	p.finish(ctx, key, summary)

	logger.WithFields(map[string]interface{}{
		"items_written": written,
		"duration_ms":   p.now().Sub(started).Milliseconds(),
	}).Info("refresh complete")

	return summary, nil
}

// finish invalidates cached freshness and records the summary. Cache trouble
// is logged, never surfaced: the data is already persisted.
func (p *Pipeline) finish(ctx context.Context, key types.ResourceKey, summary *types.Summary) {
	if p.cfg.Cache == nil {
		return
	}
	logger := logging.FromContext(ctx)

	keys := []types.ResourceKey{key}
	if key.Resource != types.ResourceDashboard && key.Resource != types.ResourceAnalytics {
		// the composite dashboard resource derives freshness from the same
		// tables this refresh just wrote
		keys = append(keys, types.NewResourceKey(key.TenantID, types.ResourceDashboard))
	}
	for _, k := range keys {
		if err := p.cfg.Cache.InvalidateTimestamp(ctx, k); err != nil {
			logger.WithError(err).Warn("freshness invalidation failed")
		}
	}

	if err := p.cfg.Cache.SetSummary(ctx, key, summary); err != nil {
		logger.WithError(err).Warn("summary store failed")
	}
}

func (p *Pipeline) refreshBacklinks(ctx context.Context, tenant *models.Tenant) (int, error) {
	links, err := p.cfg.BacklinkProvider.FetchBacklinks(ctx, tenant.Domain)
	if err != nil {
		return 0, err
	}

	// anchor texts are a separate billable endpoint; their failure degrades
	// the refresh, it does not fail it
	anchors, err := p.cfg.BacklinkProvider.FetchAnchorTexts(ctx, tenant.Domain)
	if err != nil {
		logging.FromContext(ctx).WithError(err).Warn("anchor text enrichment skipped")
	} else {
		for i := range links {
			if text, ok := anchors[links[i].SourceURL]; ok {
				links[i].AnchorText = text
			}
		}
	}

	for i := range links {
		links[i].TenantID = tenant.ID
	}

	written, err := p.cfg.Backlinks.ReplaceProviderRows(ctx, tenant.ID, links)
	if err != nil {
		return 0, apperrors.NewPersistError("backlink replace", err)
	}
	return written, nil
}

func (p *Pipeline) refreshKeywords(ctx context.Context, tenant *models.Tenant) (int, error) {
	keywords, err := p.cfg.RankProvider.FetchRankings(ctx, tenant.Domain)
	if err != nil {
		return 0, err
	}

	for i := range keywords {
		keywords[i].TenantID = tenant.ID
	}

	written, err := p.cfg.Keywords.UpsertRankings(ctx, tenant.ID, keywords)
	if err != nil {
		return 0, apperrors.NewPersistError("keyword upsert", err)
	}
	return written, nil
}

func (p *Pipeline) refreshTraffic(ctx context.Context, tenant *models.Tenant) (int, error) {
	since := p.now().Add(-p.cfg.StatsLookback)

	sources, err := p.cfg.TrafficProvider.FetchTrafficSources(ctx, tenant.AnalyticsPropertyID, since)
	if err != nil {
		return 0, err
	}
	for i := range sources {
		sources[i].TenantID = tenant.ID
	}

	written, err := p.cfg.Traffic.UpsertSources(ctx, tenant.ID, sources)
	if err != nil {
		return 0, apperrors.NewPersistError("traffic source upsert", err)
	}

	// top pages are the optional sub-fetch of a traffic refresh
	pages, err := p.cfg.TrafficProvider.FetchTopPages(ctx, tenant.AnalyticsPropertyID, since)
	if err != nil {
		logging.FromContext(ctx).WithError(err).Warn("top page sub-fetch skipped")
		return written, nil
	}
	for i := range pages {
		pages[i].TenantID = tenant.ID
	}

	pagesWritten, err := p.cfg.Traffic.UpsertTopPages(ctx, tenant.ID, pages)
	if err != nil {
		return 0, apperrors.NewPersistError("top page upsert", err)
	}

	return written + pagesWritten, nil
}

func (p *Pipeline) refreshAnalytics(ctx context.Context, tenant *models.Tenant) (int, error) {
	since := p.now().Add(-p.cfg.StatsLookback)

	events, err := p.cfg.AnalyticsProvider.FetchMetrics(ctx, tenant.AnalyticsPropertyID, since)
	if err != nil {
		return 0, err
	}
	for i := range events {
		events[i].TenantID = tenant.ID
	}

	written, err := p.cfg.Analytics.InsertEvents(ctx, events)
	if err != nil {
		return 0, apperrors.NewPersistError("analytics insert", err)
	}
	return written, nil
}

// refreshDashboard refreshes every sub-resource backing the composite
// dashboard view. Each sub-refresh is a primary fetch here: any failure
// fails the cycle.
func (p *Pipeline) refreshDashboard(ctx context.Context, tenant *models.Tenant) (int, error) {
	total := 0

	written, err := p.refreshBacklinks(ctx, tenant)
	if err != nil {
		return 0, err
	}
	total += written

	written, err = p.refreshKeywords(ctx, tenant)
	if err != nil {
		return 0, err
	}
	total += written

	written, err = p.refreshTraffic(ctx, tenant)
	if err != nil {
		return 0, err
	}
	total += written

	return total, nil
}
