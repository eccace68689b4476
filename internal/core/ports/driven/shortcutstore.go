package driven

import (
	"context"

	"github.com/omnibar-labs/omnibar-cli/internal/core/domain"
)

// ShortcutStore persists previously chosen suggestions for direct
// re-display.
type ShortcutStore interface {
	// Save stores or updates a shortcut.
	Save(ctx context.Context, shortcut domain.Shortcut) error

	// ForPrefix returns shortcuts whose saved query extends the given
	// text, most recently used first, capped at limit.
	ForPrefix(ctx context.Context, text string, limit int) ([]domain.Shortcut, error)

	// Delete removes a shortcut, typically after failed revalidation.
	Delete(ctx context.Context, id string) error
}
