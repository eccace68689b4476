package driven

import (
	"context"

	"github.com/omnibar-labs/omnibar-cli/internal/core/domain"
)

// SuggestionSource is a pluggable provider of query suggestions.
// Implementations live in adapters; the core holds only references.
type SuggestionSource interface {
	// Info returns the source's identity and display metadata.
	Info() domain.SourceInfo

	// Query executes a bounded query. Failures are returned inside
	// the SourceResult, never as a separate error: a failed source is
	// a completed source with zero suggestions. Implementations must
	// honour ctx cancellation; the caller enforces the per-source
	// timeout through it.
	Query(ctx context.Context, text string, maxResults int) domain.SourceResult

	// ValidateShortcut revalidates a previously chosen suggestion.
	// It returns the refreshed suggestion, nil when the shortcut is no
	// longer valid, or an error when validity could not be determined
	// (the shortcut is then left as displayed).
	ValidateShortcut(ctx context.Context, shortcut domain.Shortcut) (*domain.Suggestion, error)
}

// SourceLookup resolves source identities for the session orchestrator.
type SourceLookup interface {
	// Source resolves an identity to a source.
	Source(id domain.SourceID) (SuggestionSource, bool)

	// EnabledSources returns the enabled sources in a stable order.
	EnabledSources() []SuggestionSource

	// WebSource returns the current web-search source, if configured
	// and enabled.
	WebSource() (SuggestionSource, bool)

	// IsTrusted reports whether a source's suggestions may carry
	// arbitrary action payloads.
	IsTrusted(id domain.SourceID) bool
}
