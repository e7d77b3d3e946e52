// Package runlog is the refresh-history overlay, listing recent
// refresh sessions recorded in the local database.
package runlog

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dy-sh/asana-tracker/internal/history"
	"github.com/dy-sh/asana-tracker/internal/theme"
)

// sessionsLoadedMsg carries the loaded sessions into the view.
type sessionsLoadedMsg struct {
	sessions []history.Session
	err      error
}

// Model is the refresh-history overlay view.
type Model struct {
	store    *history.Store
	sessions []history.Session
	loadErr  error
	width    int
	height   int
}

// New creates a history overlay. The store may be nil when history is
// disabled.
func New(s *history.Store, width, height int) Model {
	return Model{
		store:  s,
		width:  width,
		height: height,
	}
}

// Init loads the most recent sessions.
func (m Model) Init() tea.Cmd {
	if m.store == nil {
		return nil
	}
	s := m.store
	return func() tea.Msg {
		sessions, err := s.Recent(context.Background(), 20)
		return sessionsLoadedMsg{sessions: sessions, err: err}
	}
}

// Update handles messages for the history view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if loaded, ok := msg.(sessionsLoadedMsg); ok {
		m.sessions = loaded.sessions
		m.loadErr = loaded.err
	}
	return m, nil
}

// View renders the session list, newest first.
func (m Model) View() string {
	title := lipgloss.NewStyle().Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Refresh History")

	var body string
	switch {
	case m.store == nil:
		body = theme.HelpStyle.Render("History recording is disabled in the config.")
	case m.loadErr != nil:
		body = theme.ErrorStyle.Render(
			fmt.Sprintf("Error loading history: %v", m.loadErr),
		)
	case len(m.sessions) == 0:
		body = theme.HelpStyle.Render("No refreshes recorded yet.")
	default:
		var lines []string
		for _, s := range m.sessions {
			lines = append(lines, renderSession(s))
		}
		lines = append(lines, "", theme.HelpStyle.Render("esc back"))
		body = strings.Join(lines, "\n")
	}

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, body))
}

// renderSession formats one session line.
func renderSession(s history.Session) string {
	when := s.StartedAt.Local().Format("Jan 02 15:04:05")
	took := s.Duration().Round(10 * time.Millisecond)

	if s.Failed() {
		return fmt.Sprintf(
			"%s  %s  %s",
			when,
			theme.ErrorStyle.Render("failed"),
			theme.DimmedStyle.Render(s.Error),
		)
	}

	return fmt.Sprintf(
		"%s  %d projects, %d/%d tasks  (%s)",
		when, s.Projects, s.CompletedTasks, s.TotalTasks, took,
	)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
