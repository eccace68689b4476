package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/omnibar-labs/omnibar-cli/internal/core/domain"
)

func TestSettingsFromConfigNilFallsBackToDefaults(t *testing.T) {
	assert.Equal(t, domain.DefaultSuggestSettings(), SettingsFromConfig(nil))
}

func TestSettingsFromConfigOverrides(t *testing.T) {
	cfg := &memConfig{values: map[string]any{
		"suggest.max_promoted_sources":   2,
		"suggest.max_results_per_source": 5,
		"suggest.source_timeout_ms":      250,
		"suggest.prefill_delay_ms":       50,
		"suggest.session_deadline_ms":    1500,
		"suggest.max_stat_age_days":      7,
		"suggest.min_impressions":        10,
		"suggest.min_clicks":             2,
		"suggest.coalescer_limit":        3,
		"pool.core_workers":              2,
		"pool.max_workers":               6,
		"pool.keep_alive_ms":             5000,
	}}

	s := SettingsFromConfig(cfg)
	assert.Equal(t, 2, s.MaxPromotedSources)
	assert.Equal(t, 5, s.MaxResultsPerSource)
	assert.Equal(t, 250*time.Millisecond, s.SourceTimeout)
	assert.Equal(t, 50*time.Millisecond, s.PrefillDelay)
	assert.Equal(t, 1500*time.Millisecond, s.SessionDeadline)
	assert.Equal(t, 7*24*time.Hour, s.Ranking.MaxStatAge)
	assert.Equal(t, 10, s.Ranking.MinImpressions)
	assert.Equal(t, 2, s.Ranking.MinClicks)
	assert.Equal(t, 3, s.CoalescerLimit)
	assert.Equal(t, 2, s.PoolCoreWorkers)
	assert.Equal(t, 6, s.PoolMaxWorkers)
	assert.Equal(t, 5*time.Second, s.PoolKeepAlive)
}

func TestSettingsFromConfigIgnoresUnsetKeys(t *testing.T) {
	cfg := &memConfig{values: map[string]any{
		"suggest.coalescer_limit": 2,
	}}

	s := SettingsFromConfig(cfg)
	defaults := domain.DefaultSuggestSettings()
	assert.Equal(t, 2, s.CoalescerLimit)
	assert.Equal(t, defaults.MaxPromotedSources, s.MaxPromotedSources)
	assert.Equal(t, defaults.SourceTimeout, s.SourceTimeout)
}
