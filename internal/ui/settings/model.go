// Package settings is the token-management view: enter a personal
// access token, validate it against Asana, or clear the stored one.
package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/dy-sh/asana-tracker/internal/keys"
	"github.com/dy-sh/asana-tracker/internal/session"
	"github.com/dy-sh/asana-tracker/internal/theme"
)

// Mode represents the current state of the settings view.
type Mode int

const (
	ModeForm       Mode = iota // Token entry form
	ModeValidating             // Testing the token against the API
	ModeResult                 // Show validation result
)

// ConnectedMsg signals a token was saved and validated; the handle is
// ready for use.
type ConnectedMsg struct {
	Handle *session.Handle
}

// ClosedMsg signals the settings view should close without a new
// connection.
type ClosedMsg struct{}

// ClearedMsg signals the stored token was cleared.
type ClearedMsg struct{}

// tokenSavedMsg carries the result of a save-and-validate attempt.
type tokenSavedMsg struct {
	handle *session.Handle
	err    error
}

// Model is the Bubble Tea model for the settings view.
type Model struct {
	mode Mode
	gate *session.Gate

	form      *huh.Form
	formToken string

	spinner    spinner.Model
	validError error
	userName   string

	keys          *keys.KeyMap
	width, height int
}

// New creates a settings view model backed by the given credential gate.
func New(g *session.Gate, k *keys.KeyMap, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		mode:    ModeForm,
		gate:    g,
		spinner: sp,
		keys:    k,
		width:   width,
		height:  height,
	}
}

// Init builds a fresh token form.
func (m Model) Init() tea.Cmd {
	return nil
}

// Open resets the view to a blank form and returns its init command.
func (m *Model) Open() tea.Cmd {
	m.mode = ModeForm
	m.formToken = ""
	m.validError = nil
	m.userName = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tokenSavedMsg:
		m.mode = ModeResult
		m.validError = msg.err
		if msg.handle != nil {
			m.userName = msg.handle.User
		}
		if msg.err == nil {
			handle := msg.handle
			return m, func() tea.Msg { return ConnectedMsg{Handle: handle} }
		}
		return m, nil

	case spinner.TickMsg:
		if m.mode == ModeValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m.updateForm(msg)
}

// handleKeyMsg processes key messages based on the current mode.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case ModeForm:
		if msg.String() == "ctrl+x" {
			// Clear deletes the token unconditionally; delete errors
			// are swallowed inside the gate.
			m.gate.Clear()
			m.formToken = ""
			m.form = m.buildForm()
			return m, tea.Batch(
				m.form.Init(),
				func() tea.Msg { return ClearedMsg{} },
			)
		}
		return m.updateForm(msg)

	case ModeValidating:
		// No escape hatch: the validation call runs to completion.
		return m, nil

	case ModeResult:
		switch msg.String() {
		case "enter", "esc":
			if m.validError == nil {
				return m, func() tea.Msg { return ClosedMsg{} }
			}
			// Back to the form to try another token. The failed token
			// is still persisted in the keyring.
			m.mode = ModeForm
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		return m, nil
	}

	return m, nil
}

// updateForm advances the huh form and reacts to completion.
func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		token := strings.TrimSpace(m.formToken)
		m.mode = ModeValidating
		return m, tea.Batch(
			m.spinner.Tick,
			m.saveToken(token),
		)
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return ClosedMsg{} }
	}

	return m, cmd
}

// buildForm constructs the token entry form.
func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Asana Personal Access Token").
				Description("Create one at app.asana.com/0/developer-console").
				EchoMode(huh.EchoModePassword).
				Value(&m.formToken).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("token is required")
					}
					return nil
				}),
		),
	).WithWidth(m.formWidth())
}

// saveToken returns a command that persists the token and validates it.
// Persistence happens first: a token that fails validation stays stored.
func (m Model) saveToken(token string) tea.Cmd {
	g := m.gate
	return func() tea.Msg {
		handle, err := g.Save(context.Background(), token)
		return tokenSavedMsg{handle: handle, err: err}
	}
}

// View renders the settings view for the current mode.
func (m Model) View() string {
	var content string

	switch m.mode {
	case ModeForm:
		title := lipgloss.NewStyle().Bold(true).
			Foreground(theme.ColorWhite).
			MarginBottom(1).
			Render("API Settings")
		hint := theme.HelpStyle.Render(
			"enter save and connect | ctrl+x clear stored token | esc cancel",
		)
		formView := ""
		if m.form != nil {
			formView = m.form.View()
		}
		content = lipgloss.JoinVertical(lipgloss.Left, title, formView, "", hint)

	case ModeValidating:
		content = fmt.Sprintf("%s Validating token...", m.spinner.View())

	case ModeResult:
		if m.validError != nil {
			content = lipgloss.JoinVertical(
				lipgloss.Left,
				theme.ErrorStyle.Render("Connection failed"),
				"",
				m.validError.Error(),
				"",
				theme.HelpStyle.Render("enter/esc back to form"),
			)
		} else {
			content = lipgloss.JoinVertical(
				lipgloss.Left,
				theme.ConnectedStyle.Render("Connected to Asana"),
				"",
				fmt.Sprintf("Signed in as %s", m.userName),
				"",
				theme.HelpStyle.Render("enter/esc close"),
			)
		}
	}

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// formWidth returns the width available for the huh form.
func (m Model) formWidth() int {
	w := m.width - 8
	if w < 40 {
		w = 40
	}
	return w
}

// SetSize updates the settings view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
