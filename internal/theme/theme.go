package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dy-sh/asana-tracker/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the top bar and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps bordered content areas such as the summary and the
// settings form.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// WorkspaceHeaderStyle renders per-workspace group headers in the table.
var WorkspaceHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorBlue).
	MarginTop(1)

// TableHeaderStyle renders the column header row.
var TableHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorGray)

// DimmedStyle de-emphasizes completed or archived rows.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// ErrorStyle renders pipeline-level error messages.
var ErrorStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// ConnectedStyle and friends color the connection status label.
var (
	ConnectedStyle    = lipgloss.NewStyle().Foreground(ColorGreen)
	DisconnectedStyle = lipgloss.NewStyle().Foreground(ColorRed)
	WarnStyle         = lipgloss.NewStyle().Foreground(ColorOrange)
)

// StatusStyle returns a color-coded style for the given project status label.
func StatusStyle(status string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch status {
	case model.StatusOnTrack, model.StatusCompleted:
		return base.Foreground(ColorGreen)
	case model.StatusOnHold:
		return base.Foreground(ColorBlue)
	case model.StatusAtRisk:
		return base.Foreground(ColorYellow)
	case model.StatusOffTrack, model.StatusError:
		return base.Foreground(ColorRed)
	case model.StatusArchived:
		return base.Foreground(ColorGray)
	case model.StatusActive:
		return base.Foreground(ColorWhite)
	default:
		return base.Foreground(ColorGray)
	}
}

// ProjectColorStyle maps an Asana project color name to a foreground
// style for the project name cell.
func ProjectColorStyle(color string) lipgloss.Style {
	base := lipgloss.NewStyle()

	switch color {
	case "dark-red", "light-red", "red":
		return base.Foreground(ColorRed)
	case "dark-orange", "light-orange":
		return base.Foreground(ColorOrange)
	case "dark-green", "light-green":
		return base.Foreground(ColorGreen)
	case "dark-blue", "light-blue":
		return base.Foreground(ColorBlue)
	case "dark-purple", "light-purple", "dark-pink", "light-pink":
		return base.Foreground(ColorMagenta)
	case "dark-warm-gray", "light-warm-gray":
		return base.Foreground(ColorGray)
	default:
		return base.Foreground(ColorWhite)
	}
}
