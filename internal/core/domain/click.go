package domain

import "time"

// SlotKind classifies the clicked slot for the click log receiver.
type SlotKind string

const (
	// SlotBuiltin marks a suggestion from a compiled-in source.
	SlotBuiltin SlotKind = "builtin"

	// SlotWeb marks a suggestion from the web-search source.
	// Web clicks carry the suggestion's extra payload.
	SlotWeb SlotKind = "web"

	// SlotOther marks a suggestion from any other source.
	SlotOther SlotKind = "other"
)

// ClassifySlot determines the slot kind for a suggestion given the
// identity of the configured web source (empty when none).
func ClassifySlot(s Suggestion, webSource SourceID) SlotKind {
	switch {
	case webSource != "" && s.SourceID == webSource:
		return SlotWeb
	case s.SourceID.IsBuiltin():
		return SlotBuiltin
	default:
		return SlotOther
	}
}

// ClickRecord is the fire-and-forget payload sent to the click log
// sink when a suggestion is chosen.
type ClickRecord struct {
	// ID uniquely identifies the record.
	ID string

	// Query is the query text at click time.
	Query string

	// SlotIndex is the clicked position in the displayed sequence.
	SlotIndex int

	// Kind is the slot classification.
	Kind SlotKind

	// ActionKey is the suggestion's action intent, when present.
	ActionKey string

	// Extra is the suggestion's opaque payload. Only populated for
	// web slots.
	Extra string

	// CreatedAt is when the click happened.
	CreatedAt time.Time
}
