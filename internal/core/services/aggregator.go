package services

import (
	"sync"
	"sync/atomic"

	"github.com/omnibar-labs/omnibar-cli/internal/core/domain"
	"github.com/omnibar-labs/omnibar-cli/internal/logger"
)

// Ensure SlotAggregator implements the interface.
var _ Aggregator = (*SlotAggregator)(nil)

// Aggregator collects asynchronous per-source results and shortcut
// refreshes for the active query into a thread-safe structure that
// yields immutable point-in-time snapshots.
//
// Every report carries the generation token of the query it belongs
// to. Reports for a superseded generation are discarded, so in-flight
// jobs never need cooperative cancellation: their late callbacks are
// simply no-ops.
type Aggregator interface {
	// BeginQuery discards all state and starts a new generation with
	// the given slot assignment and prefilled shortcuts.
	BeginQuery(gen uint64, query string, promotion domain.PromotionResult, shortcuts []domain.Suggestion)

	// Generation returns the current generation token.
	Generation() uint64

	// ReportSourceStarted marks a source in flight. Idempotent per
	// source per generation; returns whether this changed state.
	ReportSourceStarted(gen uint64, id domain.SourceID) bool

	// ReportResult merges a completed source's suggestions into its
	// assigned slot. An error result completes the source with zero
	// suggestions. Tolerates arriving before ReportSourceStarted.
	ReportResult(gen uint64, res domain.SourceResult)

	// ReportShortcutRefresh replaces the shortcut's displayed data,
	// or removes it when refreshed is nil.
	ReportShortcutRefresh(gen uint64, shortcutID string, refreshed *domain.Suggestion)

	// FinishPending completes every started-but-unfinished source
	// with no further content. Used by the session deadline.
	FinishPending(gen uint64)

	// Snapshot returns an independent copy of the merged list.
	Snapshot(expandAdditional bool) []domain.Suggestion

	// MoreResultPosition returns the index where a synthetic "show
	// more" entry belongs, or one past the end of the current
	// snapshot when nothing more applies.
	MoreResultPosition() int

	// MoreShowing reports whether the additional bucket is expanded.
	MoreShowing() bool

	// MoreAvailable reports whether a "show more" entry applies.
	MoreAvailable() bool

	// ShowMoreResults expands the additional bucket.
	ShowMoreResults()

	// IsResultsPending reports whether any source has started but not
	// completed.
	IsResultsPending() bool

	// SetListener swaps the state-change listener. The callback is
	// invoked outside any aggregator lock, at most once per logical
	// change, from arbitrary goroutines. A racing swap may deliver a
	// notification to either the old or the new listener, never both.
	SetListener(fn func())
}

// sourceProgress tracks one source within a generation.
type sourceProgress struct {
	started     bool
	done        bool
	suggestions []domain.Suggestion
}

// SlotAggregator orders suggestions by the slot assignment fixed at
// dispatch time: prefilled shortcuts first, then promoted sources in
// promotion order, then additional sources. Completion order never
// affects snapshot order, only which slots have content yet.
type SlotAggregator struct {
	mu         sync.Mutex
	gen        uint64
	query      string
	shortcuts  []domain.Suggestion
	promoted   []domain.SourceID
	additional []domain.SourceID
	progress   map[domain.SourceID]*sourceProgress
	expanded   bool

	listener atomic.Pointer[func()]
}

// NewSlotAggregator creates an empty aggregator. BeginQuery must be
// called before any report.
func NewSlotAggregator() *SlotAggregator {
	return &SlotAggregator{progress: make(map[domain.SourceID]*sourceProgress)}
}

// BeginQuery replaces the aggregation state wholesale. Older
// generations' reports become no-ops from this point on. A BeginQuery
// that lost its race to a newer query is itself discarded, so the
// generation never rolls backwards.
func (a *SlotAggregator) BeginQuery(gen uint64, query string, promotion domain.PromotionResult, shortcuts []domain.Suggestion) {
	a.mu.Lock()
	if gen < a.gen {
		a.mu.Unlock()
		logger.Debug("aggregator: discarding superseded query %q (gen %d, current %d)", query, gen, a.gen)
		return
	}
	a.gen = gen
	a.query = query
	a.shortcuts = append([]domain.Suggestion(nil), shortcuts...)
	a.promoted = append([]domain.SourceID(nil), promotion.Promoted...)
	a.additional = append([]domain.SourceID(nil), promotion.Additional...)
	a.progress = make(map[domain.SourceID]*sourceProgress, len(a.promoted)+len(a.additional))
	a.expanded = false
	a.mu.Unlock()

	a.notify()
}

// Generation returns the current generation token.
func (a *SlotAggregator) Generation() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gen
}

// ReportSourceStarted marks the source in flight for the generation.
func (a *SlotAggregator) ReportSourceStarted(gen uint64, id domain.SourceID) bool {
	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		logger.Debug("aggregator: stale start from %s (gen %d, current %d)", id, gen, a.gen)
		return false
	}
	p := a.source(id)
	changed := !p.started
	p.started = true
	a.mu.Unlock()

	if changed {
		a.notify()
	}
	return changed
}

// ReportResult merges a completed source's result into its slot.
func (a *SlotAggregator) ReportResult(gen uint64, res domain.SourceResult) {
	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		logger.Debug("aggregator: discarding stale result from %s (gen %d, current %d)", res.SourceID, gen, a.gen)
		return
	}
	p := a.source(res.SourceID)
	p.started = true
	p.done = true
	if res.Failed() {
		logger.Warn("aggregator: source %s failed: %v", res.SourceID, res.Err)
		p.suggestions = nil
	} else {
		p.suggestions = append([]domain.Suggestion(nil), res.Suggestions...)
	}
	a.mu.Unlock()

	a.notify()
}

// ReportShortcutRefresh replaces or removes a prefilled shortcut.
func (a *SlotAggregator) ReportShortcutRefresh(gen uint64, shortcutID string, refreshed *domain.Suggestion) {
	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		logger.Debug("aggregator: discarding stale shortcut refresh %s", shortcutID)
		return
	}
	changed := false
	for i := range a.shortcuts {
		if a.shortcuts[i].ShortcutID != shortcutID {
			continue
		}
		if refreshed == nil {
			a.shortcuts = append(a.shortcuts[:i], a.shortcuts[i+1:]...)
		} else {
			a.shortcuts[i] = *refreshed
		}
		changed = true
		break
	}
	a.mu.Unlock()

	if changed {
		a.notify()
	}
}

// FinishPending declares every in-flight source of the generation
// complete with no further content.
func (a *SlotAggregator) FinishPending(gen uint64) {
	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		return
	}
	changed := false
	for _, p := range a.progress {
		if p.started && !p.done {
			p.done = true
			changed = true
		}
	}
	a.mu.Unlock()

	if changed {
		logger.Debug("aggregator: deadline reached, pending sources closed")
		a.notify()
	}
}

// Snapshot returns an independent copy of the merged suggestion list.
// Callers never observe a partially applied report and are blocked
// only for the duration of the copy.
func (a *SlotAggregator) Snapshot(expandAdditional bool) []domain.Suggestion {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.assemble(expandAdditional || a.expanded)
}

// MoreResultPosition returns the synthetic "show more" index, or the
// snapshot length when nothing more applies. No real index ever equals
// the snapshot length, so a consumer's "was the more entry clicked"
// check naturally rejects the sentinel.
func (a *SlotAggregator) MoreResultPosition() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.moreAvailableLocked() {
		// The synthetic entry goes right after the promoted content.
		return len(a.assemble(false))
	}
	return len(a.assemble(a.expanded))
}

// MoreShowing reports whether the additional bucket is expanded.
func (a *SlotAggregator) MoreShowing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.expanded
}

// MoreAvailable reports whether a "show more" entry applies.
func (a *SlotAggregator) MoreAvailable() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.moreAvailableLocked()
}

// ShowMoreResults expands the additional bucket for the current query.
func (a *SlotAggregator) ShowMoreResults() {
	a.mu.Lock()
	changed := !a.expanded
	a.expanded = true
	a.mu.Unlock()

	if changed {
		a.notify()
	}
}

// IsResultsPending reports whether any source is in flight.
func (a *SlotAggregator) IsResultsPending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, p := range a.progress {
		if p.started && !p.done {
			return true
		}
	}
	return false
}

// SetListener swaps the state-change listener.
func (a *SlotAggregator) SetListener(fn func()) {
	if fn == nil {
		a.listener.Store(nil)
		return
	}
	a.listener.Store(&fn)
}

// notify fires the listener outside any lock. Best-effort delivery:
// a listener swapped mid-flight receives zero or one notification.
func (a *SlotAggregator) notify() {
	if fn := a.listener.Load(); fn != nil {
		(*fn)()
	}
}

// source returns the progress entry, creating it lazily so results may
// arrive before their start report. Caller holds a.mu.
func (a *SlotAggregator) source(id domain.SourceID) *sourceProgress {
	p, ok := a.progress[id]
	if !ok {
		p = &sourceProgress{}
		a.progress[id] = p
	}
	return p
}

// moreAvailableLocked reports whether additional slots exist and are
// not expanded. Caller holds a.mu.
func (a *SlotAggregator) moreAvailableLocked() bool {
	return len(a.additional) > 0 && !a.expanded
}

// assemble builds the ordered suggestion list: shortcuts, promoted
// slots, then (when expanded) additional slots. Source suggestions
// duplicating a displayed shortcut are skipped. Caller holds a.mu.
func (a *SlotAggregator) assemble(includeAdditional bool) []domain.Suggestion {
	out := make([]domain.Suggestion, 0, len(a.shortcuts)+8)
	out = append(out, a.shortcuts...)

	shown := make(map[string]bool, len(a.shortcuts))
	for _, s := range a.shortcuts {
		if s.ShortcutID != "" {
			shown[s.ShortcutID] = true
		}
	}

	appendSlots := func(slots []domain.SourceID) {
		for _, id := range slots {
			p, ok := a.progress[id]
			if !ok {
				continue
			}
			for _, s := range p.suggestions {
				if s.ShortcutID != "" && shown[s.ShortcutID] {
					continue
				}
				out = append(out, s)
			}
		}
	}

	appendSlots(a.promoted)
	if includeAdditional {
		appendSlots(a.additional)
	}
	return out
}
