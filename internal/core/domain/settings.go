package domain

import "time"

// SuggestSettings holds the tunable parameters of the suggestion
// pipeline. Values are read from configuration per query, so a changed
// tunable takes effect on the next query without restart.
type SuggestSettings struct {
	// MaxPromotedSources caps the promoted bucket.
	MaxPromotedSources int

	// MaxResultsPerSource caps how many suggestions one source may
	// contribute to a query.
	MaxResultsPerSource int

	// SourceTimeout bounds a single source query or shortcut
	// revalidation.
	SourceTimeout time.Duration

	// PrefillDelay is how long shortcuts are shown alone before
	// source queries are dispatched. It doubles as keystroke
	// debounce: a superseded query never dispatches.
	PrefillDelay time.Duration

	// SessionDeadline bounds how long a query may stay pending before
	// unfinished sources are declared complete with no results.
	SessionDeadline time.Duration

	// Ranking is the trust policy for historical usage statistics.
	Ranking RankingPolicy

	// CoalescerLimit is the per-source concurrent job limit.
	CoalescerLimit int

	// PoolCoreWorkers is the number of resident pool workers.
	PoolCoreWorkers int

	// PoolMaxWorkers caps the pool; submissions beyond it are dropped.
	PoolMaxWorkers int

	// PoolKeepAlive is how long a non-resident worker idles before
	// exiting.
	PoolKeepAlive time.Duration
}

// DefaultSuggestSettings returns the compiled-in defaults, used when a
// tunable is unset in configuration.
func DefaultSuggestSettings() SuggestSettings {
	return SuggestSettings{
		MaxPromotedSources:  4,
		MaxResultsPerSource: 8,
		SourceTimeout:       time.Second,
		PrefillDelay:        100 * time.Millisecond,
		SessionDeadline:     3 * time.Second,
		Ranking: RankingPolicy{
			MaxStatAge:     30 * 24 * time.Hour,
			MinImpressions: 20,
			MinClicks:      3,
		},
		CoalescerLimit:  1,
		PoolCoreWorkers: 4,
		PoolMaxWorkers:  8,
		PoolKeepAlive:   10 * time.Second,
	}
}
