package domain

import "time"

// Suggestion is an immutable value produced by a source for a query.
type Suggestion struct {
	// SourceID identifies the source that produced this suggestion.
	SourceID SourceID

	// Title is the primary display text.
	Title string

	// Subtitle is optional secondary display text.
	Subtitle string

	// Icon is a short icon identifier resolved by the UI.
	Icon string

	// Intent names the action taken when the suggestion is chosen,
	// e.g. "web-search" or "open-url".
	Intent string

	// Extra is an opaque action payload interpreted by the intent
	// handler (a URL, a command line, a search term).
	Extra string

	// ShortcutID is non-empty when the suggestion is eligible for
	// direct re-display as a shortcut. Refresh matching is by this ID.
	ShortcutID string
}

// SameShortcut reports whether two suggestions refer to the same shortcut.
func (s Suggestion) SameShortcut(other Suggestion) bool {
	return s.ShortcutID != "" && s.ShortcutID == other.ShortcutID
}

// SourceResult is the outcome of one source query: either an ordered
// sequence of suggestions or an error, never both. A still-pending
// source has no SourceResult at all; that state is tracked by the
// aggregator.
type SourceResult struct {
	// SourceID identifies the reporting source.
	SourceID SourceID

	// Suggestions is the ordered result sequence. Nil when Err is set.
	Suggestions []Suggestion

	// Err is set when the query failed. A failed source contributes
	// zero suggestions; the error is never surfaced to the user.
	Err error
}

// Failed reports whether the query failed.
func (r SourceResult) Failed() bool {
	return r.Err != nil
}

// Shortcut is a previously chosen suggestion eligible for direct
// re-display pending revalidation by its owning source.
type Shortcut struct {
	// ID uniquely identifies the shortcut.
	ID string

	// SourceID identifies the source that owns the shortcut.
	SourceID SourceID

	// Query is the query text the suggestion was chosen for.
	// Shortcuts prefill when it extends the current query.
	Query string

	// Suggestion is the displayed data, as of the last validation.
	Suggestion Suggestion

	// CreatedAt is when the shortcut was first saved.
	CreatedAt time.Time

	// LastUsed is when the shortcut was last chosen.
	LastUsed time.Time
}
