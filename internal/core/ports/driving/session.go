package driving

import (
	"context"

	"github.com/omnibar-labs/omnibar-cli/internal/core/domain"
)

// SuggestSession is one live suggestion session: a sequence of queries
// where each new query supersedes the previous one. All methods are
// safe for concurrent use; Snapshot never blocks behind in-flight
// source work.
type SuggestSession interface {
	// SetQuery supersedes the current query and fans the new one out
	// to the enabled sources. Results arrive asynchronously; the
	// listener fires on every state change.
	SetQuery(ctx context.Context, text string)

	// Snapshot returns an independent copy of the current merged
	// suggestion list. With expandAdditional the additional bucket is
	// included regardless of the "more results" state.
	Snapshot(expandAdditional bool) []domain.Suggestion

	// MoreResultPosition returns the index where a synthetic "show
	// more" entry belongs, or one past the end of the snapshot when
	// there is nothing more to show.
	MoreResultPosition() int

	// MoreShowing reports whether the additional bucket is expanded.
	MoreShowing() bool

	// MoreAvailable reports whether expanding would reveal anything.
	MoreAvailable() bool

	// ShowMoreResults expands the additional bucket for the current
	// query.
	ShowMoreResults()

	// IsResultsPending reports whether any source has started but not
	// completed for the current query.
	IsResultsPending() bool

	// Click acts on the suggestion at the given snapshot index:
	// records usage, saves a shortcut and logs the click. The index
	// equal to MoreResultPosition expands the additional bucket
	// instead. Out-of-range indices are rejected without side effects.
	Click(ctx context.Context, index int)

	// SetListener swaps the state-change listener. The callback fires
	// outside any session lock and must be safe to call from any
	// goroutine. In-flight notifications may still reach the previous
	// listener.
	SetListener(fn func())

	// Close supersedes the current query and releases session
	// resources. In-flight jobs are not interrupted; their reports
	// become no-ops.
	Close() error
}
