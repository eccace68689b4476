package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRankSourcesOrdersByClicks(t *testing.T) {
	now := time.Now()
	entries := []RankingEntry{
		{SourceID: "a", Impressions: 50, Clicks: 5, LastUsed: now},
		{SourceID: "b", Impressions: 50, Clicks: 20, LastUsed: now},
		{SourceID: "c", Impressions: 80, Clicks: 5, LastUsed: now},
	}

	got := RankSources(entries, RankingPolicy{}, now)
	assert.Equal(t, ids("b", "c", "a"), got)
}

func TestRankSourcesDropsUntrusted(t *testing.T) {
	now := time.Now()
	policy := RankingPolicy{
		MaxStatAge:     30 * 24 * time.Hour,
		MinImpressions: 10,
		MinClicks:      2,
	}
	entries := []RankingEntry{
		{SourceID: "fresh", Impressions: 20, Clicks: 4, LastUsed: now.Add(-time.Hour)},
		{SourceID: "thin", Impressions: 3, Clicks: 4, LastUsed: now},
		{SourceID: "unclicked", Impressions: 100, Clicks: 1, LastUsed: now},
		{SourceID: "stale", Impressions: 100, Clicks: 50, LastUsed: now.Add(-60 * 24 * time.Hour)},
	}

	got := RankSources(entries, policy, now)
	assert.Equal(t, ids("fresh"), got)
}

func TestRankSourcesTiesBreakByInputOrder(t *testing.T) {
	now := time.Now()
	entries := []RankingEntry{
		{SourceID: "x", Impressions: 10, Clicks: 3, LastUsed: now},
		{SourceID: "y", Impressions: 10, Clicks: 3, LastUsed: now},
	}

	got := RankSources(entries, RankingPolicy{}, now)
	assert.Equal(t, ids("x", "y"), got)
}
