package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-dashboard/internal/types"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 48*time.Hour, cfg.Refresh.TTLs[types.ResourceBacklinks])
	assert.Equal(t, 24*time.Hour, cfg.Refresh.TTLs[types.ResourceKeywords])
	assert.Equal(t, 30*time.Second, cfg.Refresh.FreshnessCacheTTL)
	assert.True(t, cfg.Rotation.Enabled)
	assert.Equal(t, 5, cfg.Rotation.BatchSize)
	assert.Equal(t, []types.ResourceType{types.ResourceBacklinks, types.ResourceKeywords}, cfg.Rotation.Resources)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("TTL_BACKLINKS", "96h")
	t.Setenv("ROTATION_BATCH_SIZE", "10")
	t.Setenv("ROTATION_INTERVAL", "2h")
	t.Setenv("AUTO_REFRESH_RESOURCES", "traffic, analytics, bogus")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 96*time.Hour, cfg.Refresh.TTLs[types.ResourceBacklinks])
	assert.Equal(t, 10, cfg.Rotation.BatchSize)
	assert.Equal(t, 2*time.Hour, cfg.Rotation.Interval)
	// unknown resource names are dropped, whitespace is tolerated
	assert.Equal(t, []types.ResourceType{types.ResourceTraffic, types.ResourceAnalytics}, cfg.Rotation.Resources)
}

func TestLoadConfigRejectsBadRotation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"batch size too small", "ROTATION_BATCH_SIZE", "0"},
		{"batch size too large", "ROTATION_BATCH_SIZE", "1000"},
		{"interval too short", "ROTATION_INTERVAL", "1m"},
		{"interval too long", "ROTATION_INTERVAL", "48h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestTTLForClassOverride(t *testing.T) {
	cfg := RefreshConfig{
		TTLs: map[types.ResourceType]time.Duration{
			types.ResourceBacklinks: 48 * time.Hour,
		},
		PremiumTTLs: map[types.ResourceType]time.Duration{
			types.ResourceBacklinks: 72 * time.Hour,
		},
	}

	tests := []struct {
		name     string
		resource types.ResourceType
		class    types.TenantClass
		want     time.Duration
	}{
		{"standard class uses base ttl", types.ResourceBacklinks, types.ClassStandard, 48 * time.Hour},
		{"premium class uses override", types.ResourceBacklinks, types.ClassPremium, 72 * time.Hour},
		{"premium without override falls back", types.ResourceKeywords, types.ClassPremium, 24 * time.Hour},
		{"unknown resource gets the default", types.ResourceTraffic, types.ClassStandard, 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.TTLFor(tt.resource, tt.class))
		})
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b ", []string{"a", "b"}},
		{"", nil},
		{",,", nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, splitList(tt.input), "input %q", tt.input)
	}
}
