package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnibar-labs/omnibar-cli/internal/adapters/driven/storage/memory"
	"github.com/omnibar-labs/omnibar-cli/internal/core/domain"
	"github.com/omnibar-labs/omnibar-cli/internal/core/ports/driven"
)

// fakeSource is a scriptable suggestion source.
type fakeSource struct {
	info domain.SourceInfo

	mu    sync.Mutex
	calls int

	// block, when set, holds Query until closed.
	block chan struct{}
	err   error
	// suggest produces the result sequence for a query text.
	suggest func(text string) []domain.Suggestion
	// validate overrides shortcut revalidation; defaults to "unchanged".
	validate func(sc domain.Shortcut) (*domain.Suggestion, error)
}

var _ driven.SuggestionSource = (*fakeSource)(nil)

func (f *fakeSource) Info() domain.SourceInfo { return f.info }

func (f *fakeSource) Query(ctx context.Context, text string, _ int) domain.SourceResult {
	f.mu.Lock()
	f.calls++
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
		}
	}
	if f.err != nil {
		return domain.SourceResult{SourceID: f.info.ID, Err: f.err}
	}
	var out []domain.Suggestion
	if f.suggest != nil {
		out = f.suggest(text)
	}
	for i := range out {
		out[i].SourceID = f.info.ID
	}
	return domain.SourceResult{SourceID: f.info.ID, Suggestions: out}
}

func (f *fakeSource) ValidateShortcut(_ context.Context, sc domain.Shortcut) (*domain.Suggestion, error) {
	if f.validate != nil {
		return f.validate(sc)
	}
	sugg := sc.Suggestion
	sugg.ShortcutID = sc.ID
	return &sugg, nil
}

func (f *fakeSource) queryCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fixedTitles returns a suggest func ignoring the query text.
func fixedTitles(names ...string) func(string) []domain.Suggestion {
	out := make([]domain.Suggestion, len(names))
	for i, n := range names {
		out[i] = domain.Suggestion{Title: n}
	}
	return func(string) []domain.Suggestion { return out }
}

// memConfig is an in-memory ConfigStore for tests.
type memConfig struct {
	mu     sync.Mutex
	values map[string]any
}

var _ driven.ConfigStore = (*memConfig)(nil)

// newMemConfig returns a config with timers disabled so tests never
// depend on wall-clock delays.
func newMemConfig(overrides map[string]any) *memConfig {
	values := map[string]any{
		"suggest.prefill_delay_ms":    0,
		"suggest.session_deadline_ms": 0,
		"suggest.source_timeout_ms":   500,
	}
	for k, v := range overrides {
		values[k] = v
	}
	return &memConfig{values: values}
}

func (c *memConfig) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

func (c *memConfig) GetString(key string) string {
	if v, ok := c.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func (c *memConfig) GetInt(key string) int {
	if v, ok := c.Get(key); ok {
		if n, ok := v.(int); ok {
			return n
		}
	}
	return 0
}

func (c *memConfig) GetBool(key string) bool {
	if v, ok := c.Get(key); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

func (c *memConfig) Set(key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *memConfig) Save() error                   { return nil }
func (c *memConfig) Load() error                   { return nil }
func (c *memConfig) Watch(_ context.Context) error { return nil }
func (c *memConfig) Path() string                  { return "" }

type sessionFixture struct {
	session   *Session
	registry  *SourceRegistry
	ranking   *memory.RankingStore
	shortcuts *memory.ShortcutStore
	clicklog  *memory.ClickLog
}

func newSessionFixture(t *testing.T, cfg driven.ConfigStore, web domain.SourceID, sources ...driven.SuggestionSource) *sessionFixture {
	t.Helper()
	if cfg == nil {
		cfg = newMemConfig(nil)
	}

	registry := NewSourceRegistry()
	for _, src := range sources {
		registry.Register(src)
	}
	if web != "" {
		registry.SetWebSource(web)
	}

	f := &sessionFixture{
		registry:  registry,
		ranking:   memory.NewRankingStore(),
		shortcuts: memory.NewShortcutStore(),
		clicklog:  memory.NewClickLog(),
	}
	clicks := NewClickService(f.clicklog, nil, registry)
	f.session = NewSession(registry, f.ranking, f.shortcuts, clicks, cfg)
	t.Cleanup(func() { _ = f.session.Close() })
	return f
}

func TestSessionFansOutToAllSources(t *testing.T) {
	builtin := &fakeSource{info: domain.SourceInfo{ID: "builtin/commands"}, suggest: fixedTitles("b1")}
	github := &fakeSource{info: domain.SourceInfo{ID: "github/repos"}, suggest: fixedTitles("g1")}
	web := &fakeSource{info: domain.SourceInfo{ID: "web/suggest", QueryAfterZeroResults: true}, suggest: fixedTitles("w1")}
	f := newSessionFixture(t, nil, "web/suggest", builtin, github, web)

	f.session.SetQuery(context.Background(), "hey")

	require.Eventually(t, func() bool {
		return !f.session.IsResultsPending() && len(f.session.Snapshot(true)) == 3
	}, 2*time.Second, 5*time.Millisecond)

	// No usage history yet: only the web source is promoted, the rest
	// fill the additional bucket in registration order.
	assert.Equal(t, []string{"w1"}, titles(f.session.Snapshot(false)))
	assert.Equal(t, []string{"w1", "b1", "g1"}, titles(f.session.Snapshot(true)))
	assert.True(t, f.session.MoreAvailable())
}

func TestSessionRunsOnSemaphorePool(t *testing.T) {
	builtin := &fakeSource{info: domain.SourceInfo{ID: "builtin/commands"}, suggest: fixedTitles("b1")}
	web := &fakeSource{info: domain.SourceInfo{ID: "web/suggest", QueryAfterZeroResults: true}, suggest: fixedTitles("w1")}

	registry := NewSourceRegistry()
	registry.Register(builtin)
	registry.Register(web)
	registry.SetWebSource("web/suggest")

	session := NewSessionWithPool(registry, memory.NewRankingStore(), memory.NewShortcutStore(), nil, newMemConfig(nil), NewSemaphorePool(2))
	t.Cleanup(func() { _ = session.Close() })

	session.SetQuery(context.Background(), "hey")

	require.Eventually(t, func() bool {
		return !session.IsResultsPending() && len(session.Snapshot(true)) == 2
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"w1", "b1"}, titles(session.Snapshot(true)))
}

func TestSessionSupersedesStaleQuery(t *testing.T) {
	block := make(chan struct{})
	src := &fakeSource{
		info:  domain.SourceInfo{ID: "web/suggest", QueryAfterZeroResults: true},
		block: block,
		suggest: func(text string) []domain.Suggestion {
			return []domain.Suggestion{{Title: text}}
		},
	}
	f := newSessionFixture(t, nil, "web/suggest", src)

	ctx := context.Background()
	f.session.SetQuery(ctx, "a")
	f.session.SetQuery(ctx, "ab")
	close(block)

	// The first query's result carries a superseded generation and is
	// discarded; the coalesced second query runs after it.
	require.Eventually(t, func() bool {
		snap := f.session.Snapshot(true)
		return len(snap) == 1 && snap[0].Title == "ab"
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, src.queryCalls())
}

func TestSessionSkipsKnownEmptyPrefix(t *testing.T) {
	builtin := &fakeSource{
		info:    domain.SourceInfo{ID: "builtin/commands"},
		suggest: func(string) []domain.Suggestion { return nil },
	}
	web := &fakeSource{
		info:    domain.SourceInfo{ID: "web/suggest", QueryAfterZeroResults: true},
		suggest: func(string) []domain.Suggestion { return nil },
	}
	f := newSessionFixture(t, nil, "web/suggest", builtin, web)
	ctx := context.Background()

	f.session.SetQuery(ctx, "ab")
	require.Eventually(t, func() bool {
		return builtin.queryCalls() == 1 && web.queryCalls() == 1 && !f.session.IsResultsPending()
	}, 2*time.Second, 5*time.Millisecond)

	// Extending a zero-result prefix re-queries only the opted-in source.
	f.session.SetQuery(ctx, "abc")
	require.Eventually(t, func() bool {
		return web.queryCalls() == 2
	}, 2*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, builtin.queryCalls())

	// An unrelated query is fair game again.
	f.session.SetQuery(ctx, "xy")
	require.Eventually(t, func() bool {
		return builtin.queryCalls() == 2
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSessionClickRecordsAndSavesShortcut(t *testing.T) {
	web := &fakeSource{
		info: domain.SourceInfo{ID: "web/suggest", QueryAfterZeroResults: true},
		suggest: func(string) []domain.Suggestion {
			return []domain.Suggestion{{Title: "w1", Intent: "web-search", Extra: "https://example.com/?q=go"}}
		},
	}
	f := newSessionFixture(t, nil, "web/suggest", web)
	ctx := context.Background()

	f.session.SetQuery(ctx, "go")
	require.Eventually(t, func() bool {
		return len(f.session.Snapshot(false)) == 1
	}, 2*time.Second, 5*time.Millisecond)

	f.session.Click(ctx, 0)

	records := f.clicklog.Records()
	require.Len(t, records, 1)
	assert.Equal(t, domain.SlotWeb, records[0].Kind)
	assert.Equal(t, "go", records[0].Query)
	assert.Equal(t, 0, records[0].SlotIndex)
	assert.Equal(t, "https://example.com/?q=go", records[0].Extra)
	assert.NotEmpty(t, records[0].ID)

	saved, err := f.shortcuts.ForPrefix(ctx, "go", 10)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, domain.SourceID("web/suggest"), saved[0].SourceID)
	assert.Equal(t, "w1", saved[0].Suggestion.Title)

	entries, err := f.ranking.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Clicks)

	// Out-of-range clicks change nothing.
	f.session.Click(ctx, 99)
	assert.Len(t, f.clicklog.Records(), 1)
}

func TestSessionClickOnMorePositionExpands(t *testing.T) {
	web := &fakeSource{info: domain.SourceInfo{ID: "web/suggest", QueryAfterZeroResults: true}, suggest: fixedTitles("w1")}
	builtin := &fakeSource{info: domain.SourceInfo{ID: "builtin/commands"}, suggest: fixedTitles("b1")}
	f := newSessionFixture(t, nil, "web/suggest", web, builtin)
	ctx := context.Background()

	f.session.SetQuery(ctx, "x")
	require.Eventually(t, func() bool {
		return !f.session.IsResultsPending() && len(f.session.Snapshot(true)) == 2
	}, 2*time.Second, 5*time.Millisecond)

	require.True(t, f.session.MoreAvailable())
	pos := f.session.MoreResultPosition()
	assert.Equal(t, 1, pos)

	f.session.Click(ctx, pos)

	assert.True(t, f.session.MoreShowing())
	assert.Equal(t, []string{"w1", "b1"}, titles(f.session.Snapshot(false)))
	// Expanding is not a suggestion click.
	assert.Empty(t, f.clicklog.Records())
	saved, err := f.shortcuts.ForPrefix(ctx, "", 10)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestSessionPrefillsAndRefreshesShortcuts(t *testing.T) {
	src := &fakeSource{
		info:    domain.SourceInfo{ID: "builtin/commands"},
		suggest: func(string) []domain.Suggestion { return nil },
		validate: func(sc domain.Shortcut) (*domain.Suggestion, error) {
			sugg := sc.Suggestion
			sugg.ShortcutID = sc.ID
			sugg.Title = "Go (refreshed)"
			return &sugg, nil
		},
	}
	f := newSessionFixture(t, nil, "", src)
	ctx := context.Background()

	require.NoError(t, f.shortcuts.Save(ctx, domain.Shortcut{
		ID:         "s1",
		SourceID:   "builtin/commands",
		Query:      "golang",
		Suggestion: domain.Suggestion{SourceID: "builtin/commands", Title: "Go"},
	}))

	f.session.SetQuery(ctx, "go")

	require.Eventually(t, func() bool {
		snap := f.session.Snapshot(true)
		return len(snap) == 1 && snap[0].Title == "Go (refreshed)"
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSessionRemovesInvalidShortcut(t *testing.T) {
	src := &fakeSource{
		info:    domain.SourceInfo{ID: "builtin/commands"},
		suggest: func(string) []domain.Suggestion { return nil },
		validate: func(domain.Shortcut) (*domain.Suggestion, error) {
			return nil, nil
		},
	}
	f := newSessionFixture(t, nil, "", src)
	ctx := context.Background()

	require.NoError(t, f.shortcuts.Save(ctx, domain.Shortcut{
		ID:         "s1",
		SourceID:   "builtin/commands",
		Query:      "golang",
		Suggestion: domain.Suggestion{SourceID: "builtin/commands", Title: "Go"},
	}))

	f.session.SetQuery(ctx, "go")

	require.Eventually(t, func() bool {
		saved, err := f.shortcuts.ForPrefix(ctx, "go", 10)
		return err == nil && len(saved) == 0 && len(f.session.Snapshot(true)) == 0
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSessionPromotesRankedSources(t *testing.T) {
	cfg := newMemConfig(map[string]any{
		"suggest.min_impressions": 1,
		"suggest.min_clicks":      1,
	})
	web := &fakeSource{info: domain.SourceInfo{ID: "web/suggest", QueryAfterZeroResults: true}, suggest: fixedTitles("w1")}
	builtin := &fakeSource{info: domain.SourceInfo{ID: "builtin/commands"}, suggest: fixedTitles("b1")}
	github := &fakeSource{info: domain.SourceInfo{ID: "github/repos"}, suggest: fixedTitles("g1")}
	f := newSessionFixture(t, cfg, "web/suggest", builtin, github, web)
	ctx := context.Background()

	// Give github enough history to earn a promoted slot.
	require.NoError(t, f.ranking.RecordImpression(ctx, "github/repos"))
	require.NoError(t, f.ranking.RecordClick(ctx, "github/repos"))

	f.session.SetQuery(ctx, "x")
	require.Eventually(t, func() bool {
		return !f.session.IsResultsPending() && len(f.session.Snapshot(true)) == 3
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"w1", "g1"}, titles(f.session.Snapshot(false)))
	assert.Equal(t, []string{"w1", "g1", "b1"}, titles(f.session.Snapshot(true)))
}

func TestSessionEmptyQueryShowsOnlyShortcuts(t *testing.T) {
	src := &fakeSource{info: domain.SourceInfo{ID: "builtin/commands"}, suggest: fixedTitles("b1")}
	f := newSessionFixture(t, nil, "", src)
	ctx := context.Background()

	require.NoError(t, f.shortcuts.Save(ctx, domain.Shortcut{
		ID:         "s1",
		SourceID:   "builtin/commands",
		Query:      "anything",
		Suggestion: domain.Suggestion{SourceID: "builtin/commands", Title: "Recent"},
	}))

	f.session.SetQuery(ctx, "")
	require.Eventually(t, func() bool {
		snap := f.session.Snapshot(true)
		return len(snap) == 1 && snap[0].Title == "Recent"
	}, 2*time.Second, 5*time.Millisecond)

	// Blank queries never fan out.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, src.queryCalls())
}

func TestSessionClosedIgnoresQueries(t *testing.T) {
	src := &fakeSource{info: domain.SourceInfo{ID: "builtin/commands"}, suggest: fixedTitles("b1")}
	f := newSessionFixture(t, nil, "", src)

	require.NoError(t, f.session.Close())
	f.session.SetQuery(context.Background(), "x")

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, src.queryCalls())
	assert.Empty(t, f.session.Snapshot(true))
}
