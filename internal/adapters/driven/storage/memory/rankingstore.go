// Package memory provides in-memory implementations of the storage
// ports, used in tests and as fallbacks when the SQLite store is
// unavailable.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/omnibar-labs/omnibar-cli/internal/core/domain"
	"github.com/omnibar-labs/omnibar-cli/internal/core/ports/driven"
)

// Ensure RankingStore implements the interface.
var _ driven.RankingStore = (*RankingStore)(nil)

// RankingStore is an in-memory implementation of driven.RankingStore.
type RankingStore struct {
	mu      sync.RWMutex
	entries map[domain.SourceID]*domain.RankingEntry
}

// NewRankingStore creates a new in-memory ranking store.
func NewRankingStore() *RankingStore {
	return &RankingStore{
		entries: make(map[domain.SourceID]*domain.RankingEntry),
	}
}

// RecordImpression notes that a source was queried for display.
func (s *RankingStore) RecordImpression(_ context.Context, id domain.SourceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry(id).Impressions++
	return nil
}

// RecordClick notes that one of the source's suggestions was chosen.
func (s *RankingStore) RecordClick(_ context.Context, id domain.SourceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(id)
	e.Clicks++
	e.LastUsed = time.Now().UTC()
	return nil
}

// Entries returns copies of all usage statistics, ordered by source
// identity for determinism.
func (s *RankingStore) Entries(_ context.Context) ([]domain.RankingEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.RankingEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SourceID < out[j].SourceID
	})
	return out, nil
}

// entry returns the entry for a source, creating it lazily.
// Caller holds s.mu.
func (s *RankingStore) entry(id domain.SourceID) *domain.RankingEntry {
	e, ok := s.entries[id]
	if !ok {
		e = &domain.RankingEntry{SourceID: id}
		s.entries[id] = e
	}
	return e
}
