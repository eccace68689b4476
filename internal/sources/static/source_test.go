package static

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnibar-labs/omnibar-cli/internal/core/domain"
)

func testCommands() []Command {
	return []Command{
		{Name: "help", Description: "Show help", Action: "help"},
		{Name: "history", Description: "Browse history", Action: "history"},
		{Name: "search-history", Description: "Search old queries", Action: "search-history"},
		{Name: "quit", Description: "Exit", Action: "quit"},
	}
}

func suggestionTitles(res domain.SourceResult) []string {
	out := make([]string, len(res.Suggestions))
	for i, s := range res.Suggestions {
		out[i] = s.Title
	}
	return out
}

func TestQueryPrefixBeforeSubstring(t *testing.T) {
	src := NewSource(testCommands())

	res := src.Query(context.Background(), "hist", 8)
	require.False(t, res.Failed())
	assert.Equal(t, []string{"history", "search-history"}, suggestionTitles(res))
}

func TestQueryCaseInsensitive(t *testing.T) {
	src := NewSource(testCommands())

	res := src.Query(context.Background(), "  QUIT ", 8)
	require.Len(t, res.Suggestions, 1)

	got := res.Suggestions[0]
	assert.Equal(t, SourceID, got.SourceID)
	assert.Equal(t, "quit", got.Title)
	assert.Equal(t, "command", got.Intent)
	assert.Equal(t, "quit", got.Extra)
}

func TestQueryCapsResults(t *testing.T) {
	src := NewSource(testCommands())

	res := src.Query(context.Background(), "h", 1)
	assert.Len(t, res.Suggestions, 1)
}

func TestQueryNoMatch(t *testing.T) {
	src := NewSource(testCommands())

	res := src.Query(context.Background(), "xyz", 8)
	require.False(t, res.Failed())
	assert.Empty(t, res.Suggestions)
}

func TestValidateShortcut(t *testing.T) {
	src := NewSource(testCommands())
	ctx := context.Background()

	refreshed, err := src.ValidateShortcut(ctx, domain.Shortcut{
		ID:         "s1",
		SourceID:   SourceID,
		Suggestion: domain.Suggestion{SourceID: SourceID, Title: "help", Subtitle: "stale text"},
	})
	require.NoError(t, err)
	require.NotNil(t, refreshed)
	assert.Equal(t, "Show help", refreshed.Subtitle)
	assert.Equal(t, "s1", refreshed.ShortcutID)

	// A command dropped from the corpus invalidates its shortcut.
	refreshed, err = src.ValidateShortcut(ctx, domain.Shortcut{
		ID:         "s2",
		SourceID:   SourceID,
		Suggestion: domain.Suggestion{SourceID: SourceID, Title: "removed"},
	})
	require.NoError(t, err)
	assert.Nil(t, refreshed)
}

func TestInfoIsBuiltin(t *testing.T) {
	src := NewSource(nil)
	info := src.Info()
	assert.Equal(t, SourceID, info.ID)
	assert.True(t, info.ID.IsBuiltin())
	assert.False(t, info.QueryAfterZeroResults)
}
