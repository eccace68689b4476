package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/omnibar-labs/omnibar-cli/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive omnibar",
	Long: `Launch the interactive terminal omnibar.

Suggestions update live as you type.

Controls:
  ↑/↓    - Navigate suggestions
  Enter  - Choose suggestion / expand "more"
  Tab    - Show additional sources
  Esc    - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if session == nil {
		return errors.New("suggest session not configured")
	}

	app := tui.NewApp(session)
	p := tea.NewProgram(app, tea.WithAltScreen())
	app.AttachProgram(p)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
