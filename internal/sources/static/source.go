// Package static provides the builtin command suggestion source. Its
// corpus is compiled in, so queries are pure string matching.
package static

import (
	"context"
	"strings"

	"github.com/omnibar-labs/omnibar-cli/internal/core/domain"
	"github.com/omnibar-labs/omnibar-cli/internal/core/ports/driven"
)

// SourceID is the identity of the builtin command source.
const SourceID domain.SourceID = "builtin/commands"

// Command is one entry of the builtin corpus.
type Command struct {
	// Name is the command keyword matched against the query.
	Name string

	// Description is the secondary display text.
	Description string

	// Action is the intent payload executed when chosen.
	Action string
}

// DefaultCommands returns the compiled-in command corpus.
func DefaultCommands() []Command {
	return []Command{
		{Name: "help", Description: "Show keyboard shortcuts and usage", Action: "help"},
		{Name: "history", Description: "Browse recent queries", Action: "history"},
		{Name: "settings", Description: "Open the configuration file", Action: "settings"},
		{Name: "sources", Description: "List and toggle suggestion sources", Action: "sources"},
		{Name: "clear", Description: "Clear saved shortcuts", Action: "clear-shortcuts"},
		{Name: "quit", Description: "Exit omnibar", Action: "quit"},
	}
}

// Ensure Source implements the interface.
var _ driven.SuggestionSource = (*Source)(nil)

// Source matches query text against the command corpus: prefix matches
// first, then substring matches, preserving corpus order within each
// group.
type Source struct {
	commands []Command
}

// NewSource creates a builtin source over the given corpus. A nil
// corpus uses DefaultCommands.
func NewSource(commands []Command) *Source {
	if commands == nil {
		commands = DefaultCommands()
	}
	return &Source{commands: commands}
}

// Info returns the source's identity and display metadata.
func (s *Source) Info() domain.SourceInfo {
	return domain.SourceInfo{
		ID:    SourceID,
		Label: "Commands",
		Icon:  "terminal",
	}
}

// Query matches the text against the corpus.
func (s *Source) Query(_ context.Context, text string, maxResults int) domain.SourceResult {
	needle := strings.ToLower(strings.TrimSpace(text))

	var prefix, contains []Command
	for _, cmd := range s.commands {
		name := strings.ToLower(cmd.Name)
		switch {
		case strings.HasPrefix(name, needle):
			prefix = append(prefix, cmd)
		case strings.Contains(name, needle):
			contains = append(contains, cmd)
		}
	}

	matched := append(prefix, contains...)
	if maxResults > 0 && len(matched) > maxResults {
		matched = matched[:maxResults]
	}

	suggestions := make([]domain.Suggestion, len(matched))
	for i, cmd := range matched {
		suggestions[i] = commandSuggestion(cmd)
	}
	return domain.SourceResult{SourceID: SourceID, Suggestions: suggestions}
}

// ValidateShortcut keeps a shortcut only while its command is still in
// the corpus, refreshing the displayed description.
func (s *Source) ValidateShortcut(_ context.Context, shortcut domain.Shortcut) (*domain.Suggestion, error) {
	for _, cmd := range s.commands {
		if cmd.Name == shortcut.Suggestion.Title {
			sugg := commandSuggestion(cmd)
			sugg.ShortcutID = shortcut.ID
			return &sugg, nil
		}
	}
	return nil, nil
}

// commandSuggestion maps a command to a suggestion.
func commandSuggestion(cmd Command) domain.Suggestion {
	return domain.Suggestion{
		SourceID: SourceID,
		Title:    cmd.Name,
		Subtitle: cmd.Description,
		Icon:     "terminal",
		Intent:   "command",
		Extra:    cmd.Action,
	}
}
