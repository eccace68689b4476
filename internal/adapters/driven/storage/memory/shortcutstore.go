package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/omnibar-labs/omnibar-cli/internal/core/domain"
	"github.com/omnibar-labs/omnibar-cli/internal/core/ports/driven"
)

// Ensure ShortcutStore implements the interface.
var _ driven.ShortcutStore = (*ShortcutStore)(nil)

// ShortcutStore is an in-memory implementation of driven.ShortcutStore.
type ShortcutStore struct {
	mu        sync.RWMutex
	shortcuts map[string]domain.Shortcut
}

// NewShortcutStore creates a new in-memory shortcut store.
func NewShortcutStore() *ShortcutStore {
	return &ShortcutStore{
		shortcuts: make(map[string]domain.Shortcut),
	}
}

// Save stores or updates a shortcut.
func (s *ShortcutStore) Save(_ context.Context, shortcut domain.Shortcut) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shortcuts[shortcut.ID] = shortcut
	return nil
}

// ForPrefix returns shortcuts whose saved query extends the given
// text, most recently used first.
func (s *ShortcutStore) ForPrefix(_ context.Context, text string, limit int) ([]domain.Shortcut, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Shortcut, 0)
	for _, sc := range s.shortcuts {
		if strings.HasPrefix(sc.Query, text) {
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastUsed.Equal(out[j].LastUsed) {
			return out[i].LastUsed.After(out[j].LastUsed)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete removes a shortcut.
func (s *ShortcutStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.shortcuts, id)
	return nil
}
