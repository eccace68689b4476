package services

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/omnibar-labs/omnibar-cli/internal/core/domain"
	"github.com/omnibar-labs/omnibar-cli/internal/core/ports/driven"
	"github.com/omnibar-labs/omnibar-cli/internal/core/ports/driving"
	"github.com/omnibar-labs/omnibar-cli/internal/logger"
)

// Ensure Session implements the interface.
var _ driving.SuggestSession = (*Session)(nil)

// Session orchestrates one query lifecycle at a time: it promotes the
// enabled sources, assigns each a display slot, dispatches one query
// job per source through the coalescer (tag = source identity) and
// feeds every asynchronous callback into the shared aggregator under
// the current generation token. A new query increments the token and
// replaces the aggregation state wholesale; late callbacks from the
// old generation are discarded, never raced.
type Session struct {
	lookup    driven.SourceLookup
	ranking   driven.RankingStore
	shortcuts driven.ShortcutStore
	clicks    *ClickService
	config    driven.ConfigStore
	pool      driven.WorkerPool
	coalescer *Coalescer
	agg       Aggregator

	generation atomic.Uint64

	mu sync.Mutex
	// lastQuery is the text of the current generation, kept for click
	// records.
	lastQuery string
	// emptyPrefix remembers, per source, the shortest query text that
	// returned zero suggestions. Extensions of it are not re-queried
	// unless the source opts in.
	emptyPrefix map[domain.SourceID]string
	closed      bool
}

// NewSession creates a suggestion session on a bounded worker pool
// sized from the current configuration. Per-query tunables are re-read
// on every SetQuery.
func NewSession(
	lookup driven.SourceLookup,
	ranking driven.RankingStore,
	shortcuts driven.ShortcutStore,
	clicks *ClickService,
	config driven.ConfigStore,
) *Session {
	settings := SettingsFromConfig(config)
	pool := NewBoundedPool(settings.PoolCoreWorkers, settings.PoolMaxWorkers, settings.PoolKeepAlive)
	return NewSessionWithPool(lookup, ranking, shortcuts, clicks, config, pool)
}

// NewSessionWithPool creates a suggestion session on a caller-supplied
// worker pool. Close shuts the pool down when it has resident workers
// to release; other pools drain on their own.
func NewSessionWithPool(
	lookup driven.SourceLookup,
	ranking driven.RankingStore,
	shortcuts driven.ShortcutStore,
	clicks *ClickService,
	config driven.ConfigStore,
	pool driven.WorkerPool,
) *Session {
	settings := SettingsFromConfig(config)
	return &Session{
		lookup:      lookup,
		ranking:     ranking,
		shortcuts:   shortcuts,
		clicks:      clicks,
		config:      config,
		pool:        pool,
		coalescer:   NewCoalescer(pool, settings.CoalescerLimit),
		agg:         NewSlotAggregator(),
		emptyPrefix: make(map[domain.SourceID]string),
	}
}

// SetQuery supersedes the current query and fans the new one out.
func (s *Session) SetQuery(ctx context.Context, text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	gen := s.generation.Add(1)
	settings := SettingsFromConfig(s.config)

	logger.Section("Query")
	logger.Debug("Query %q (generation %d)", text, gen)

	promotion := s.promoteSources(ctx, settings)
	prefill := s.loadShortcuts(ctx, text, settings)

	s.agg.BeginQuery(gen, text, promotion, suggestionsOf(prefill))
	s.mu.Lock()
	s.lastQuery = text
	s.mu.Unlock()

	s.dispatchShortcutRefreshes(gen, prefill, settings)

	if strings.TrimSpace(text) == "" {
		return
	}

	dispatch := func() {
		// Superseded before the prefill delay elapsed; skip entirely.
		if s.agg.Generation() != gen {
			return
		}
		s.dispatchQueries(gen, text, promotion, settings)
	}
	if settings.PrefillDelay > 0 {
		time.AfterFunc(settings.PrefillDelay, dispatch)
	} else {
		dispatch()
	}

	if settings.SessionDeadline > 0 {
		// Stale generations make this a natural no-op; no timer
		// bookkeeping needed on supersede.
		time.AfterFunc(settings.SessionDeadline, func() {
			s.agg.FinishPending(gen)
		})
	}
}

// promoteSources computes the slot assignment for this query.
func (s *Session) promoteSources(ctx context.Context, settings domain.SuggestSettings) domain.PromotionResult {
	enabled := s.lookup.EnabledSources()
	ids := make([]domain.SourceID, len(enabled))
	for i, src := range enabled {
		ids[i] = src.Info().ID
	}

	var webID domain.SourceID
	if web, ok := s.lookup.WebSource(); ok {
		webID = web.Info().ID
	}

	var ranked []domain.SourceID
	if s.ranking != nil {
		entries, err := s.ranking.Entries(ctx)
		if err != nil {
			logger.Warn("session: ranking unavailable: %v", err)
		} else {
			ranked = domain.RankSources(entries, settings.Ranking, time.Now())
		}
	}

	promotion := domain.Promote(ids, webID, ranked, settings.MaxPromotedSources)
	logger.Debug("Promoted: %v, additional: %v", promotion.Promoted, promotion.Additional)
	return promotion
}

// loadShortcuts fetches shortcuts matching the query text. A store
// failure means no prefill, never a failed query.
func (s *Session) loadShortcuts(ctx context.Context, text string, settings domain.SuggestSettings) []domain.Shortcut {
	if s.shortcuts == nil {
		return nil
	}
	shortcuts, err := s.shortcuts.ForPrefix(ctx, text, settings.MaxResultsPerSource)
	if err != nil {
		logger.Warn("session: shortcut lookup failed: %v", err)
		return nil
	}
	logger.Debug("Prefilled %d shortcuts", len(shortcuts))
	return shortcuts
}

// dispatchShortcutRefreshes submits one revalidation job per prefilled
// shortcut. A shortcut reported invalid is removed from display and
// from the store; an indeterminate validation leaves it as shown.
func (s *Session) dispatchShortcutRefreshes(gen uint64, shortcuts []domain.Shortcut, settings domain.SuggestSettings) {
	for _, sc := range shortcuts {
		src, ok := s.lookup.Source(sc.SourceID)
		if !ok {
			continue
		}
		shortcut := sc
		s.coalescer.Submit("shortcut/"+shortcut.SourceID.String(), func() {
			ctx, cancel := context.WithTimeout(context.Background(), settings.SourceTimeout)
			defer cancel()

			refreshed, err := src.ValidateShortcut(ctx, shortcut)
			if err != nil {
				logger.Warn("session: shortcut %s validation failed: %v", shortcut.ID, err)
				return
			}
			s.agg.ReportShortcutRefresh(gen, shortcut.ID, refreshed)
			if refreshed == nil && s.shortcuts != nil {
				if derr := s.shortcuts.Delete(context.Background(), shortcut.ID); derr != nil {
					logger.Warn("session: shortcut %s delete failed: %v", shortcut.ID, derr)
				}
			}
		})
	}
}

// dispatchQueries submits one query job per source in slot order.
func (s *Session) dispatchQueries(gen uint64, text string, promotion domain.PromotionResult, settings domain.SuggestSettings) {
	for _, id := range promotion.Sources() {
		src, ok := s.lookup.Source(id)
		if !ok {
			logger.Warn("session: source %s not resolvable, skipping", id)
			continue
		}
		if s.skipForEmptyPrefix(src, text) {
			logger.Debug("session: source %s skipped, empty-result prefix", id)
			continue
		}
		if s.ranking != nil {
			if err := s.ranking.RecordImpression(context.Background(), id); err != nil {
				logger.Debug("session: impression for %s not recorded: %v", id, err)
			}
		}

		sourceID := id
		source := src
		s.coalescer.Submit(sourceID.String(), func() {
			s.agg.ReportSourceStarted(gen, sourceID)

			ctx, cancel := context.WithTimeout(context.Background(), settings.SourceTimeout)
			defer cancel()
			res := source.Query(ctx, text, settings.MaxResultsPerSource)
			res.SourceID = sourceID

			s.noteResult(sourceID, text, res)
			s.agg.ReportResult(gen, res)
		})
	}
}

// skipForEmptyPrefix reports whether the source already returned zero
// suggestions for a prefix of the current text and has not opted into
// re-querying.
func (s *Session) skipForEmptyPrefix(src driven.SuggestionSource, text string) bool {
	info := src.Info()
	if info.QueryAfterZeroResults {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix, ok := s.emptyPrefix[info.ID]
	return ok && strings.HasPrefix(text, prefix)
}

// noteResult updates the per-source empty-prefix tracking.
func (s *Session) noteResult(id domain.SourceID, text string, res domain.SourceResult) {
	if res.Failed() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(res.Suggestions) == 0 {
		if prev, ok := s.emptyPrefix[id]; !ok || len(text) < len(prev) {
			s.emptyPrefix[id] = text
		}
		return
	}
	delete(s.emptyPrefix, id)
}

// Snapshot returns an independent copy of the merged suggestion list.
func (s *Session) Snapshot(expandAdditional bool) []domain.Suggestion {
	return s.agg.Snapshot(expandAdditional)
}

// MoreResultPosition returns the synthetic "show more" index.
func (s *Session) MoreResultPosition() int {
	return s.agg.MoreResultPosition()
}

// MoreShowing reports whether the additional bucket is expanded.
func (s *Session) MoreShowing() bool {
	return s.agg.MoreShowing()
}

// MoreAvailable reports whether expanding would reveal anything.
func (s *Session) MoreAvailable() bool {
	return s.agg.MoreAvailable()
}

// ShowMoreResults expands the additional bucket.
func (s *Session) ShowMoreResults() {
	s.agg.ShowMoreResults()
}

// IsResultsPending reports whether any source is in flight.
func (s *Session) IsResultsPending() bool {
	return s.agg.IsResultsPending()
}

// SetListener swaps the state-change listener.
func (s *Session) SetListener(fn func()) {
	s.agg.SetListener(fn)
}

// Click acts on the suggestion at the given snapshot index.
func (s *Session) Click(ctx context.Context, index int) {
	if index == s.agg.MoreResultPosition() && s.agg.MoreAvailable() {
		s.agg.ShowMoreResults()
		return
	}

	snapshot := s.agg.Snapshot(s.agg.MoreShowing())
	if index < 0 || index >= len(snapshot) {
		logger.Warn("session: click index %d out of range (%d shown)", index, len(snapshot))
		return
	}
	clicked := snapshot[index]

	s.mu.Lock()
	query := s.lastQuery
	s.mu.Unlock()

	if s.ranking != nil {
		if err := s.ranking.RecordClick(ctx, clicked.SourceID); err != nil {
			logger.Debug("session: click for %s not recorded: %v", clicked.SourceID, err)
		}
	}
	s.saveShortcut(ctx, query, clicked)
	if s.clicks != nil {
		s.clicks.Log(ctx, query, index, clicked)
	}
}

// saveShortcut persists the chosen suggestion for direct re-display.
func (s *Session) saveShortcut(ctx context.Context, query string, sugg domain.Suggestion) {
	if s.shortcuts == nil {
		return
	}
	if sugg.ShortcutID == "" {
		sugg.ShortcutID = uuid.NewString()
	}
	now := time.Now().UTC()
	shortcut := domain.Shortcut{
		ID:         sugg.ShortcutID,
		SourceID:   sugg.SourceID,
		Query:      query,
		Suggestion: sugg,
		CreatedAt:  now,
		LastUsed:   now,
	}
	if err := s.shortcuts.Save(ctx, shortcut); err != nil {
		logger.Warn("session: shortcut save failed: %v", err)
	}
}

// Close supersedes the current query and releases the worker pool.
// In-flight jobs finish on their own; their reports are stale no-ops.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	gen := s.generation.Add(1)
	s.agg.BeginQuery(gen, "", domain.PromotionResult{}, nil)
	if p, ok := s.pool.(*BoundedPool); ok {
		p.Close()
	}
	return nil
}

// suggestionsOf extracts the displayed suggestions from shortcuts,
// carrying the shortcut ID for refresh matching.
func suggestionsOf(shortcuts []domain.Shortcut) []domain.Suggestion {
	out := make([]domain.Suggestion, len(shortcuts))
	for i, sc := range shortcuts {
		sugg := sc.Suggestion
		sugg.ShortcutID = sc.ID
		out[i] = sugg
	}
	return out
}
