package domain

import (
	"sort"
	"time"
)

// RankingEntry is the historical usage signal for one source.
// Entries are produced by a ranking store; the promotion algorithm
// consumes only the resulting ordered identity sequence.
type RankingEntry struct {
	// SourceID identifies the source.
	SourceID SourceID

	// Impressions counts how often the source was queried for display.
	Impressions int

	// Clicks counts how often one of its suggestions was chosen.
	Clicks int

	// LastUsed is when the source last received a click.
	LastUsed time.Time
}

// RankingPolicy controls when a usage entry is trusted enough to
// influence source promotion.
type RankingPolicy struct {
	// MaxStatAge discards entries not used within this window.
	// Zero disables the age check.
	MaxStatAge time.Duration

	// MinImpressions is the minimum sample size before the entry counts.
	MinImpressions int

	// MinClicks is the minimum click count before the entry counts.
	MinClicks int
}

// Trusted reports whether the entry carries enough signal under the policy.
func (e RankingEntry) Trusted(p RankingPolicy, now time.Time) bool {
	if e.Impressions < p.MinImpressions || e.Clicks < p.MinClicks {
		return false
	}
	if p.MaxStatAge > 0 && now.Sub(e.LastUsed) > p.MaxStatAge {
		return false
	}
	return true
}

// RankSources orders trusted entries most-used first: by clicks, then
// impressions, then input order. Untrusted entries are dropped, leaving
// their sources unranked.
func RankSources(entries []RankingEntry, policy RankingPolicy, now time.Time) []SourceID {
	trusted := make([]RankingEntry, 0, len(entries))
	for _, e := range entries {
		if e.Trusted(policy, now) {
			trusted = append(trusted, e)
		}
	}

	sort.SliceStable(trusted, func(i, j int) bool {
		if trusted[i].Clicks != trusted[j].Clicks {
			return trusted[i].Clicks > trusted[j].Clicks
		}
		return trusted[i].Impressions > trusted[j].Impressions
	})

	out := make([]SourceID, len(trusted))
	for i, e := range trusted {
		out[i] = e.SourceID
	}
	return out
}
