// Package dashboard renders the grouped project-progress table, the
// summary panel, and the determinate loading bar during a refresh.
package dashboard

import (
	"fmt"
	"strings"

	progressbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dy-sh/asana-tracker/internal/keys"
	"github.com/dy-sh/asana-tracker/internal/model"
	"github.com/dy-sh/asana-tracker/internal/progress"
	"github.com/dy-sh/asana-tracker/internal/theme"
)

// Column widths for the project table.
const (
	colName   = 32
	colBar    = 20
	colPct    = 7
	colTasks  = 9
	colStatus = 12
)

// FilterAll is the filter value that shows every workspace.
const FilterAll = ""

// Model is the dashboard view: summary stats above a scrollable,
// workspace-grouped project table.
type Model struct {
	keys     *keys.KeyMap
	viewport viewport.Model
	rowBar   progressbar.Model
	loadBar  progressbar.Model

	// records is the authoritative display state of the latest refresh.
	// It is replaced wholesale on every completed session, never merged.
	records []model.ProjectProgress
	groups  []progress.WorkspaceGroup
	summary model.Summary

	filter       string
	showArchived bool

	loading  bool
	fraction float64
	errText  string
	hasData  bool

	width  int
	height int
}

// New creates a dashboard model. defaultWorkspace preselects the
// workspace filter; it is dropped after the first refresh if no
// workspace with that name exists.
func New(
	k *keys.KeyMap,
	width, height int,
	showArchived bool,
	defaultWorkspace string,
) Model {
	rowBar := progressbar.New(
		progressbar.WithDefaultGradient(),
		progressbar.WithWidth(colBar),
		progressbar.WithoutPercentage(),
	)
	loadBar := progressbar.New(
		progressbar.WithDefaultGradient(),
		progressbar.WithWidth(40),
		progressbar.WithoutPercentage(),
	)

	vp := viewport.New(width, height)

	return Model{
		keys:         k,
		viewport:     vp,
		rowBar:       rowBar,
		loadBar:      loadBar,
		showArchived: showArchived,
		filter:       defaultWorkspace,
		width:        width,
		height:       height,
	}
}

// Update handles scrolling within the table.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// StartLoading switches the view into the determinate loading state.
func (m *Model) StartLoading() {
	m.loading = true
	m.fraction = 0
	m.errText = ""
}

// SetFraction updates the loading bar position.
func (m *Model) SetFraction(f float64) {
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	m.fraction = f
}

// SetSession replaces the display state with a completed refresh.
// Prior records are discarded, not merged.
func (m *Model) SetSession(records []model.ProjectProgress) {
	m.loading = false
	m.errText = ""
	m.records = records
	m.hasData = true

	// Drop a filter that no longer matches any workspace.
	if m.filter != FilterAll {
		names := progress.WorkspaceNames(records)
		found := false
		for _, n := range names {
			if n == m.filter {
				found = true
				break
			}
		}
		if !found {
			m.filter = FilterAll
		}
	}

	m.rebuild()
}

// SetError replaces the project list with a pipeline-level error message.
func (m *Model) SetError(msg string) {
	m.loading = false
	m.errText = msg
}

// CycleFilter advances the workspace filter: all workspaces, then each
// workspace in turn, then back to all.
func (m *Model) CycleFilter() {
	names := progress.WorkspaceNames(m.records)
	if len(names) == 0 {
		return
	}

	if m.filter == FilterAll {
		m.filter = names[0]
	} else {
		next := FilterAll
		for i, n := range names {
			if n == m.filter && i+1 < len(names) {
				next = names[i+1]
				break
			}
		}
		m.filter = next
	}

	m.rebuild()
}

// Filter returns the active workspace filter name, or "" for all.
func (m Model) Filter() string {
	return m.filter
}

// ToggleArchived flips whether archived projects are shown.
func (m *Model) ToggleArchived() {
	m.showArchived = !m.showArchived
	m.rebuild()
}

// Loading reports whether a refresh is being displayed as in flight.
func (m Model) Loading() bool {
	return m.loading
}

// rebuild re-derives the groups and summary from the immutable record
// set, applying the workspace filter and archived toggle.
func (m *Model) rebuild() {
	visible := progress.FilterByWorkspace(m.records, m.filter)
	if !m.showArchived {
		var kept []model.ProjectProgress
		for _, r := range visible {
			if !r.Archived {
				kept = append(kept, r)
			}
		}
		visible = kept
	}

	m.groups = progress.GroupByWorkspace(visible)
	m.summary = progress.Summarize(visible)
	m.viewport.SetContent(m.renderTable())
	m.viewport.GotoTop()
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - m.summaryHeight()
	if m.hasData {
		m.viewport.SetContent(m.renderTable())
	}
}

// View renders the dashboard in its current state.
func (m Model) View() string {
	switch {
	case m.loading:
		return m.renderLoading()
	case m.errText != "":
		return m.renderError()
	case !m.hasData:
		return m.centered("Press r to load your Asana projects")
	case len(m.records) == 0:
		return m.centered("No projects found")
	}

	summaryPanel := m.renderSummary()
	m.viewport.Height = m.height - lipgloss.Height(summaryPanel)
	return lipgloss.JoinVertical(lipgloss.Left, summaryPanel, m.viewport.View())
}

// renderLoading shows the determinate progress bar with a percentage.
func (m Model) renderLoading() string {
	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"Loading projects...",
		"",
		m.loadBar.ViewAs(m.fraction),
		"",
		fmt.Sprintf("%d%%", int(m.fraction*100)),
	)
	return m.centered(content)
}

// renderError shows the pipeline error in place of the project list.
func (m Model) renderError() string {
	return m.centered(theme.ErrorStyle.Render("Error loading projects:") +
		"\n\n" + m.errText)
}

// centered places content in the middle of the view area.
func (m Model) centered(content string) string {
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// summaryHeight returns the rendered height of the summary panel.
func (m Model) summaryHeight() int {
	if !m.hasData || m.loading || m.errText != "" {
		return 0
	}
	return lipgloss.Height(m.renderSummary())
}

// renderSummary draws the project counts and the overall task rollup.
func (m Model) renderSummary() string {
	s := m.summary

	counts := fmt.Sprintf(
		"%s  %s  %s  %s",
		fmt.Sprintf("%d projects", s.TotalProjects),
		theme.ConnectedStyle.Render(fmt.Sprintf("%d active", s.ActiveProjects)),
		lipgloss.NewStyle().Foreground(theme.ColorBlue).
			Render(fmt.Sprintf("%d completed", s.CompletedProjects)),
		theme.DimmedStyle.Render(fmt.Sprintf("%d archived", s.ArchivedProjects)),
	)

	overall := fmt.Sprintf(
		"Overall  %s  %d/%d tasks (%.1f%%)",
		m.rowBar.ViewAs(s.OverallPercentage/100),
		s.CompletedTasks, s.TotalTasks, s.OverallPercentage,
	)

	filterLine := ""
	if m.filter != FilterAll {
		filterLine = theme.HelpStyle.Render("Workspace filter: " + m.filter)
	}

	lines := []string{counts, overall}
	if filterLine != "" {
		lines = append(lines, filterLine)
	}

	return theme.PanelStyle.
		Width(m.width - 2).
		Render(strings.Join(lines, "\n"))
}

// renderTable draws every workspace group with its column header and
// percentage-sorted project rows.
func (m Model) renderTable() string {
	var b strings.Builder

	for _, group := range m.groups {
		header := fmt.Sprintf(
			"Workspace: %s  (%d/%d tasks)",
			group.Name, group.CompletedTasks, group.TotalTasks,
		)
		b.WriteString(theme.WorkspaceHeaderStyle.Render(header))
		b.WriteString("\n")
		b.WriteString(theme.TableHeaderStyle.Render(fmt.Sprintf(
			"  %-*s %-*s %*s  %-*s",
			colName, "Project",
			colBar+colPct, "Progress",
			colTasks, "Tasks",
			colStatus, "Status",
		)))
		b.WriteString("\n")

		for _, r := range group.Records {
			b.WriteString(m.renderRow(r))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// renderRow draws one project line: name, bar, percentage, task counts,
// and the color-coded status label.
func (m Model) renderRow(r model.ProjectProgress) string {
	name := truncate(r.Name, colName)
	nameCell := theme.ProjectColorStyle(r.Color).
		Render(fmt.Sprintf("%-*s", colName, name))
	if r.Archived {
		nameCell = theme.DimmedStyle.
			Render(fmt.Sprintf("%-*s", colName, name))
	}

	bar := m.rowBar.ViewAs(r.Percentage / 100)
	pct := fmt.Sprintf("%*.1f%%", colPct-1, r.Percentage)

	tasks := fmt.Sprintf(
		"%*s", colTasks,
		fmt.Sprintf("%d/%d", r.CompletedTasks, r.TotalTasks),
	)

	status := theme.StatusStyle(r.Status).Render(r.Status)

	return fmt.Sprintf("  %s %s %s %s  %s", nameCell, bar, pct, tasks, status)
}

// truncate shortens s to at most width runes, ending with an ellipsis.
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
