// Package tui implements the interactive omnibar view using the Elm
// architecture: a single model whose suggestion rows repaint whenever
// the session reports new results.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/omnibar-labs/omnibar-cli/internal/core/domain"
	"github.com/omnibar-labs/omnibar-cli/internal/core/ports/driving"
)

// moreRowTitle is the label of the synthetic expansion row.
const moreRowTitle = "Show more results…"

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	sourceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	moreStyle     = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("69"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// refreshMsg repaints the suggestion list after a session state change.
type refreshMsg struct{}

// row is one display line: either a suggestion or the synthetic
// expansion entry.
type row struct {
	suggestion domain.Suggestion
	isMore     bool
}

// App is the root bubbletea model.
type App struct {
	session driving.SuggestSession
	input   textinput.Model
	cursor  int
	width   int
	height  int
}

// NewApp creates the omnibar model around a suggest session.
func NewApp(session driving.SuggestSession) *App {
	input := textinput.New()
	input.Placeholder = "Type to search…"
	input.Prompt = "❯ "
	input.Focus()

	return &App{
		session: session,
		input:   input,
	}
}

// AttachProgram registers the running program so session updates
// repaint the view. Must be called before Run.
func (a *App) AttachProgram(p *tea.Program) {
	a.session.SetListener(func() {
		p.Send(refreshMsg{})
	})
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case refreshMsg:
		a.clampCursor()
		return a, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			// Detach before quitting; late results must not Send into
			// a stopped program.
			a.session.SetListener(nil)
			return a, tea.Quit

		case tea.KeyUp:
			if a.cursor > 0 {
				a.cursor--
			}
			return a, nil

		case tea.KeyDown:
			if a.cursor < len(a.rows())-1 {
				a.cursor++
			}
			return a, nil

		case tea.KeyTab:
			a.session.ShowMoreResults()
			return a, nil

		case tea.KeyEnter:
			a.session.Click(context.Background(), a.cursor)
			a.clampCursor()
			return a, nil
		}
	}

	prev := a.input.Value()
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if a.input.Value() != prev {
		a.cursor = 0
		a.session.SetQuery(context.Background(), a.input.Value())
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("omnibar"))
	b.WriteString("\n\n")
	b.WriteString(a.input.View())
	b.WriteString("\n\n")

	rows := a.rows()
	if len(rows) == 0 {
		if a.session.IsResultsPending() {
			b.WriteString(subtitleStyle.Render("  searching…"))
		} else if strings.TrimSpace(a.input.Value()) != "" {
			b.WriteString(subtitleStyle.Render("  no suggestions"))
		}
		b.WriteString("\n")
	}

	for i, r := range rows {
		b.WriteString(a.renderRow(i, r))
	}

	if a.session.IsResultsPending() && len(rows) > 0 {
		b.WriteString(subtitleStyle.Render("  …"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ navigate · enter choose · tab more · esc quit"))
	b.WriteString("\n")
	return b.String()
}

// rows assembles the display rows: the current snapshot with the
// synthetic expansion entry inserted at its position.
func (a *App) rows() []row {
	snapshot := a.session.Snapshot(false)
	rows := make([]row, 0, len(snapshot)+1)
	for _, s := range snapshot {
		rows = append(rows, row{suggestion: s})
	}

	if a.session.MoreAvailable() {
		pos := a.session.MoreResultPosition()
		if pos < 0 || pos > len(rows) {
			pos = len(rows)
		}
		rows = append(rows[:pos], append([]row{{isMore: true}}, rows[pos:]...)...)
	}
	return rows
}

// renderRow renders one display line.
func (a *App) renderRow(index int, r row) string {
	marker := "  "
	if index == a.cursor {
		marker = selectedStyle.Render("› ")
	}

	if r.isMore {
		return fmt.Sprintf("%s%s\n", marker, moreStyle.Render(moreRowTitle))
	}

	s := r.suggestion
	line := s.Title
	if index == a.cursor {
		line = selectedStyle.Render(line)
	}
	line = fmt.Sprintf("%s%s %s", marker, line, sourceStyle.Render("["+s.SourceID.String()+"]"))
	if s.Subtitle != "" {
		line += subtitleStyle.Render(" — " + s.Subtitle)
	}
	return line + "\n"
}

// clampCursor keeps the cursor inside the current row range.
func (a *App) clampCursor() {
	n := len(a.rows())
	if n == 0 {
		a.cursor = 0
		return
	}
	if a.cursor >= n {
		a.cursor = n - 1
	}
}
