package services

import (
	"time"

	"github.com/omnibar-labs/omnibar-cli/internal/core/domain"
	"github.com/omnibar-labs/omnibar-cli/internal/core/ports/driven"
)

// Configuration keys for the suggestion tunables. Unset keys fall back
// to the compiled-in defaults.
const (
	keyMaxPromoted     = "suggest.max_promoted_sources"
	keyMaxResults      = "suggest.max_results_per_source"
	keySourceTimeout   = "suggest.source_timeout_ms"
	keyPrefillDelay    = "suggest.prefill_delay_ms"
	keySessionDeadline = "suggest.session_deadline_ms"
	keyMaxStatAgeDays  = "suggest.max_stat_age_days"
	keyMinImpressions  = "suggest.min_impressions"
	keyMinClicks       = "suggest.min_clicks"
	keyCoalescerLimit  = "suggest.coalescer_limit"
	keyPoolCoreWorkers = "pool.core_workers"
	keyPoolMaxWorkers  = "pool.max_workers"
	keyPoolKeepAlive   = "pool.keep_alive_ms"
)

// SettingsFromConfig resolves the suggestion tunables from the config
// store, falling back to defaults for unset keys. Called once per
// query so remote overrides take effect between queries.
func SettingsFromConfig(cfg driven.ConfigStore) domain.SuggestSettings {
	s := domain.DefaultSuggestSettings()
	if cfg == nil {
		return s
	}

	setInt := func(key string, dst *int) {
		if _, ok := cfg.Get(key); ok {
			*dst = cfg.GetInt(key)
		}
	}
	setMillis := func(key string, dst *time.Duration) {
		if _, ok := cfg.Get(key); ok {
			*dst = time.Duration(cfg.GetInt(key)) * time.Millisecond
		}
	}

	setInt(keyMaxPromoted, &s.MaxPromotedSources)
	setInt(keyMaxResults, &s.MaxResultsPerSource)
	setMillis(keySourceTimeout, &s.SourceTimeout)
	setMillis(keyPrefillDelay, &s.PrefillDelay)
	setMillis(keySessionDeadline, &s.SessionDeadline)
	if _, ok := cfg.Get(keyMaxStatAgeDays); ok {
		s.Ranking.MaxStatAge = time.Duration(cfg.GetInt(keyMaxStatAgeDays)) * 24 * time.Hour
	}
	setInt(keyMinImpressions, &s.Ranking.MinImpressions)
	setInt(keyMinClicks, &s.Ranking.MinClicks)
	setInt(keyCoalescerLimit, &s.CoalescerLimit)
	setInt(keyPoolCoreWorkers, &s.PoolCoreWorkers)
	setInt(keyPoolMaxWorkers, &s.PoolMaxWorkers)
	setMillis(keyPoolKeepAlive, &s.PoolKeepAlive)

	return s
}
