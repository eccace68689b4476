package services

import (
	"sync"

	"github.com/omnibar-labs/omnibar-cli/internal/core/domain"
	"github.com/omnibar-labs/omnibar-cli/internal/core/ports/driven"
	"github.com/omnibar-labs/omnibar-cli/internal/logger"
)

// Ensure SourceRegistry implements the interface.
var _ driven.SourceLookup = (*SourceRegistry)(nil)

// SourceRegistry resolves source identities to registered suggestion
// sources. Registration order is preserved so that promotion output is
// deterministic. Safe for concurrent use.
type SourceRegistry struct {
	mu      sync.RWMutex
	order   []domain.SourceID
	sources map[domain.SourceID]driven.SuggestionSource
	enabled map[domain.SourceID]bool
	trusted map[domain.SourceID]bool
	web     domain.SourceID
}

// NewSourceRegistry creates an empty registry.
func NewSourceRegistry() *SourceRegistry {
	return &SourceRegistry{
		sources: make(map[domain.SourceID]driven.SuggestionSource),
		enabled: make(map[domain.SourceID]bool),
		trusted: make(map[domain.SourceID]bool),
	}
}

// Register adds a source, enabled by default. Builtin sources are
// trusted implicitly. Re-registering an identity replaces the source
// but keeps its original position.
func (r *SourceRegistry) Register(src driven.SuggestionSource) {
	id := src.Info().ID
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sources[id]; !ok {
		r.order = append(r.order, id)
		r.enabled[id] = true
		r.trusted[id] = id.IsBuiltin()
	}
	r.sources[id] = src
	logger.Debug("registry: registered source %s", id)
}

// SetEnabled enables or disables a source.
func (r *SourceRegistry) SetEnabled(id domain.SourceID, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sources[id]; ok {
		r.enabled[id] = enabled
	}
}

// SetTrusted marks a source as trusted.
func (r *SourceRegistry) SetTrusted(id domain.SourceID, trusted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sources[id]; ok {
		r.trusted[id] = trusted
	}
}

// SetWebSource designates the web-search source.
func (r *SourceRegistry) SetWebSource(id domain.SourceID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.web = id
}

// Source resolves an identity.
func (r *SourceRegistry) Source(id domain.SourceID) (driven.SuggestionSource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, ok := r.sources[id]
	return src, ok
}

// Sources returns all registered sources in registration order,
// enabled or not.
func (r *SourceRegistry) Sources() []driven.SuggestionSource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]driven.SuggestionSource, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.sources[id])
	}
	return out
}

// EnabledSources returns enabled sources in registration order.
func (r *SourceRegistry) EnabledSources() []driven.SuggestionSource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]driven.SuggestionSource, 0, len(r.order))
	for _, id := range r.order {
		if r.enabled[id] {
			out = append(out, r.sources[id])
		}
	}
	return out
}

// WebSource returns the designated web-search source when it is
// registered and enabled.
func (r *SourceRegistry) WebSource() (driven.SuggestionSource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.web == "" || !r.enabled[r.web] {
		return nil, false
	}
	src, ok := r.sources[r.web]
	return src, ok
}

// IsTrusted reports whether the source is trusted.
func (r *SourceRegistry) IsTrusted(id domain.SourceID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.trusted[id]
}
