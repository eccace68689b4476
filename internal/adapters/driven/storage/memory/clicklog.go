package memory

import (
	"context"
	"sync"

	"github.com/omnibar-labs/omnibar-cli/internal/core/domain"
	"github.com/omnibar-labs/omnibar-cli/internal/core/ports/driven"
)

// Ensure ClickLog implements the interface.
var _ driven.ClickLogSink = (*ClickLog)(nil)

// ClickLog is an in-memory implementation of driven.ClickLogSink.
type ClickLog struct {
	mu      sync.RWMutex
	records []domain.ClickRecord
}

// NewClickLog creates a new in-memory click log.
func NewClickLog() *ClickLog {
	return &ClickLog{}
}

// Record stores one click record.
func (l *ClickLog) Record(_ context.Context, rec domain.ClickRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
	return nil
}

// Records returns a copy of all stored records.
func (l *ClickLog) Records() []domain.ClickRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.ClickRecord(nil), l.records...)
}
