package driven

import (
	"context"

	"github.com/omnibar-labs/omnibar-cli/internal/core/domain"
)

// RankingStore accumulates per-source usage statistics and exposes
// them as ranking entries. How entries are persisted is up to the
// implementation.
type RankingStore interface {
	// RecordImpression notes that a source was queried for display.
	RecordImpression(ctx context.Context, id domain.SourceID) error

	// RecordClick notes that one of the source's suggestions was chosen.
	RecordClick(ctx context.Context, id domain.SourceID) error

	// Entries returns the current usage statistics for all sources.
	Entries(ctx context.Context) ([]domain.RankingEntry, error)
}
