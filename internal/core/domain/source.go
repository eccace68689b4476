package domain

import "strings"

// builtinPrefix namespaces sources compiled into the binary.
// Click records classify these slots as "builtin".
const builtinPrefix = "builtin/"

// SourceID is the opaque identity of a suggestion source.
// Identities are namespaced component keys, e.g. "web/suggest",
// "github/repos" or "builtin/commands".
type SourceID string

// String returns the string representation.
func (id SourceID) String() string {
	return string(id)
}

// IsBuiltin reports whether the source is compiled into the binary.
func (id SourceID) IsBuiltin() bool {
	return strings.HasPrefix(string(id), builtinPrefix)
}

// SourceInfo describes a suggestion source for display purposes.
type SourceInfo struct {
	// ID is the source identity.
	ID SourceID

	// Label is the human-readable name shown next to suggestions.
	Label string

	// Icon is a short icon identifier resolved by the UI.
	Icon string

	// QueryAfterZeroResults indicates re-querying is worthwhile even
	// when a prefix of the current query already returned no results.
	QueryAfterZeroResults bool
}
