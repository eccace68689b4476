package driven

import (
	"context"

	"github.com/omnibar-labs/omnibar-cli/internal/core/domain"
)

// ClickLogSink receives fire-and-forget click records. Sink failures
// must never fail the user-visible click action; callers swallow them.
type ClickLogSink interface {
	// Record stores one click record.
	Record(ctx context.Context, rec domain.ClickRecord) error
}

// PermissionChecker gates access to the click log receiver.
type PermissionChecker interface {
	// CanLogClicks reports whether click logging is permitted.
	CanLogClicks() bool
}
