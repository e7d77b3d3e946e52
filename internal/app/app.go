package app

import (
	"context"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dy-sh/asana-tracker/internal/history"
	"github.com/dy-sh/asana-tracker/internal/keys"
	"github.com/dy-sh/asana-tracker/internal/model"
	"github.com/dy-sh/asana-tracker/internal/refresh"
	"github.com/dy-sh/asana-tracker/internal/session"
	"github.com/dy-sh/asana-tracker/internal/theme"
	"github.com/dy-sh/asana-tracker/internal/ui"
	"github.com/dy-sh/asana-tracker/internal/ui/dashboard"
	helpview "github.com/dy-sh/asana-tracker/internal/ui/help"
	"github.com/dy-sh/asana-tracker/internal/ui/runlog"
	settingsview "github.com/dy-sh/asana-tracker/internal/ui/settings"
)

// credentialLoadedMsg carries the result of the startup credential load.
type credentialLoadedMsg struct {
	handle *session.Handle
	err    error
}

// lastSessionMsg carries the most recent recorded refresh session.
type lastSessionMsg struct {
	session *history.Session
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewDashboard ViewState = iota
	ViewSettings
	ViewHelp
	ViewHistory
)

// Model is the root Bubble Tea model that manages view routing, the
// credential gate, and the refresh orchestrator.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap

	cfg          *model.AppConfig
	configPath   string
	gate         *session.Gate
	runner       *refresh.Runner
	historyStore *history.Store

	dash         dashboard.Model
	settingsView settingsview.Model
	helpView     helpview.Model
	runlogView   runlog.Model

	// handle is the validated API client; nil while not connected.
	handle      *session.Handle
	connStatus  string
	connOK      bool
	lastSession *history.Session

	ready bool
}

// New creates the root application model. The history store may be nil
// when session recording is disabled.
func New(
	cfg *model.AppConfig,
	configPath string,
	gate *session.Gate,
	runner *refresh.Runner,
	historyStore *history.Store,
) Model {
	k := keys.DefaultKeyMap()

	return Model{
		currentView:  ViewDashboard,
		keys:         k,
		cfg:          cfg,
		configPath:   configPath,
		gate:         gate,
		runner:       runner,
		historyStore: historyStore,
		dash: dashboard.New(
			k, 80, 24,
			cfg.Display.ShowArchived, cfg.Display.DefaultWorkspace,
		),
		settingsView: settingsview.New(gate, k, 80, 24),
		helpView:     helpview.New(k, 80, 24),
		runlogView:   runlog.New(historyStore, 80, 24),
		connStatus:   "Not connected",
	}
}

// Init loads the stored credential and the last recorded session.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadCredential(),
		m.loadLastSession(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.dash.SetSize(contentWidth, contentHeight)
		m.settingsView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.runlogView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case credentialLoadedMsg:
		switch {
		case msg.err != nil:
			m.connStatus = fmt.Sprintf("Connection failed: %v", msg.err)
			m.connOK = false
			// A stored-but-invalid token needs operator input.
			return m.openSettings()
		case msg.handle == nil:
			m.connStatus = "API key not found"
			m.connOK = false
			return m.openSettings()
		default:
			m.handle = msg.handle
			m.connOK = true
			m.connStatus = fmt.Sprintf("Connected as %s", msg.handle.User)
			// Connected on startup: load data immediately.
			return m.startRefresh()
		}

	case lastSessionMsg:
		m.lastSession = msg.session
		return m, nil

	case refresh.ProgressMsg:
		m.dash.SetFraction(msg.Fraction)
		return m, m.runner.WaitForNext()

	case refresh.DoneMsg:
		// The session's records replace all prior display state.
		m.dash.SetSession(msg.Records)
		return m, m.loadLastSession()

	case refresh.FailedMsg:
		m.dash.SetError(msg.Err.Error())
		return m, m.loadLastSession()

	case settingsview.ConnectedMsg:
		m.handle = msg.Handle
		m.connOK = true
		m.connStatus = fmt.Sprintf("Connected as %s", msg.Handle.User)
		return m, nil

	case settingsview.ClearedMsg:
		m.handle = nil
		m.connOK = false
		m.connStatus = "API key cleared"
		return m, nil

	case settingsview.ClosedMsg:
		m.currentView = ViewDashboard
		if m.connOK && !m.dash.Loading() {
			return m.startRefresh()
		}
		return m, nil

	case tea.KeyMsg:
		// Global keys that work regardless of current view.
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.currentView == ViewDashboard {
				return m, tea.Quit
			}

		case "?":
			if m.currentView == ViewSettings {
				break
			}
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case "esc":
			if m.currentView == ViewHelp || m.currentView == ViewHistory {
				m.currentView = ViewDashboard
				return m, nil
			}

		case "r":
			if m.currentView == ViewDashboard {
				return m.startRefresh()
			}

		case "s":
			if m.currentView == ViewDashboard {
				return m.openSettings()
			}

		case "w":
			if m.currentView == ViewDashboard {
				m.dash.CycleFilter()
				return m, nil
			}

		case "A":
			if m.currentView == ViewDashboard {
				m.dash.ToggleArchived()
				// The toggle is a persistent preference.
				m.cfg.Display.ShowArchived = !m.cfg.Display.ShowArchived
				return m, m.saveConfig()
			}

		case "h":
			if m.currentView == ViewDashboard {
				m.previousView = m.currentView
				m.currentView = ViewHistory
				return m, m.runlogView.Init()
			}
		}
	}

	// Delegate to active sub-view.
	return m.updateActiveView(msg)
}

// startRefresh begins a new refresh session unless one is already in
// flight. Without a connected client it opens the settings view instead,
// matching the behavior of refreshing before configuring a token.
func (m Model) startRefresh() (tea.Model, tea.Cmd) {
	if m.handle == nil {
		return m.openSettings()
	}
	if m.runner.State() == refresh.StateRunning {
		return m, nil
	}

	m.dash.StartLoading()
	return m, m.runner.Start(m.handle.Client)
}

// openSettings switches to the settings view with a fresh form.
func (m Model) openSettings() (tea.Model, tea.Cmd) {
	m.previousView = m.currentView
	m.currentView = ViewSettings
	return m, m.settingsView.Open()
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewDashboard:
		m.dash, cmd = m.dash.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewHistory:
		m.runlogView, cmd = m.runlogView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader(
		"Asana Progress Tracker", m.connStatusLabel(),
	)
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewDashboard:
		return m.dash.View()
	case ViewSettings:
		return m.settingsView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewHistory:
		return m.runlogView.View()
	default:
		return ""
	}
}

// connStatusLabel colors the connection status for the header.
func (m Model) connStatusLabel() string {
	if m.connOK {
		return theme.ConnectedStyle.Render(m.connStatus)
	}
	return theme.DisconnectedStyle.Render(m.connStatus)
}

// keyHints returns keyboard shortcut hints for the status bar, plus the
// last recorded refresh when one exists.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewSettings:
		return "enter save | ctrl+x clear | esc cancel"
	case ViewHistory:
		return "esc back"
	default:
		hints := "q quit | r refresh | w workspace | A archived | s settings | h history | ? help"
		if m.lastSession != nil && !m.lastSession.Failed() {
			hints += fmt.Sprintf(
				" | last refresh %s",
				m.lastSession.StartedAt.Local().Format("15:04:05"),
			)
		}
		return hints
	}
}

// saveConfig returns a command that writes the current configuration
// back to disk. Write failures are logged but never surface in the UI.
func (m Model) saveConfig() tea.Cmd {
	cfg := m.cfg
	path := m.configPath
	return func() tea.Msg {
		if err := model.SaveConfig(path, cfg); err != nil {
			log.Printf("failed to save config: %v", err)
		}
		return nil
	}
}

// loadCredential returns a command that resolves and validates the
// stored token.
func (m Model) loadCredential() tea.Cmd {
	g := m.gate
	return func() tea.Msg {
		handle, err := g.Load(context.Background())
		return credentialLoadedMsg{handle: handle, err: err}
	}
}

// loadLastSession returns a command that reads the most recent recorded
// refresh session for the status bar.
func (m Model) loadLastSession() tea.Cmd {
	s := m.historyStore
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		last, err := s.Last(context.Background())
		if err != nil {
			return lastSessionMsg{session: nil}
		}
		return lastSessionMsg{session: last}
	}
}
