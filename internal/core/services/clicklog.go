package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/omnibar-labs/omnibar-cli/internal/core/domain"
	"github.com/omnibar-labs/omnibar-cli/internal/core/ports/driven"
	"github.com/omnibar-labs/omnibar-cli/internal/logger"
)

// ClickService delivers click records to the permission-gated log
// sink. Every failure path is absorbed: logging must never fail the
// user-visible click action.
type ClickService struct {
	sink   driven.ClickLogSink
	perm   driven.PermissionChecker
	lookup driven.SourceLookup
}

// NewClickService creates a click service. A nil sink disables click
// logging entirely; a nil permission checker permits everything.
func NewClickService(sink driven.ClickLogSink, perm driven.PermissionChecker, lookup driven.SourceLookup) *ClickService {
	return &ClickService{sink: sink, perm: perm, lookup: lookup}
}

// Log records a click on the suggestion at the given slot index.
// Web slots carry the suggestion's extra payload; other slots do not.
func (c *ClickService) Log(ctx context.Context, query string, index int, sugg domain.Suggestion) {
	if c.sink == nil {
		return
	}
	if c.perm != nil && !c.perm.CanLogClicks() {
		logger.Debug("clicklog: permission denied, skipping")
		return
	}

	rec := domain.ClickRecord{
		ID:        uuid.NewString(),
		Query:     query,
		SlotIndex: index,
		Kind:      domain.ClassifySlot(sugg, c.webSourceID()),
		ActionKey: sugg.Intent,
		CreatedAt: time.Now().UTC(),
	}
	if rec.Kind == domain.SlotWeb {
		rec.Extra = sugg.Extra
	}

	if err := c.sink.Record(ctx, rec); err != nil {
		logger.Warn("clicklog: record failed: %v", err)
	}
}

func (c *ClickService) webSourceID() domain.SourceID {
	if c.lookup == nil {
		return ""
	}
	if web, ok := c.lookup.WebSource(); ok {
		return web.Info().ID
	}
	return ""
}
