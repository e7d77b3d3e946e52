package model

// Project is an Asana project tagged with its parent workspace.
// Workspace names are not unique; grouping and filtering key on the
// workspace GID and use the name for presentation only.
type Project struct {
	// GID is the project's stable Asana identifier.
	GID string `json:"gid"`

	// Name is the project's display name.
	Name string `json:"name"`

	// WorkspaceGID identifies the parent workspace.
	WorkspaceGID string `json:"workspace_gid"`

	// WorkspaceName is the parent workspace's display name, carried
	// alongside the GID for presentation.
	WorkspaceName string `json:"workspace_name"`

	// Completed reports whether the project itself is marked done.
	Completed bool `json:"completed"`

	// Archived reports whether the project has been archived.
	Archived bool `json:"archived"`

	// Color is Asana's display color for the project.
	Color string `json:"color"`

	// Notes is the project description. Fetched but not aggregated.
	Notes string `json:"notes"`

	// Owner is the project owner's display name, when set.
	Owner string `json:"owner"`

	// Team is the owning team's display name, when set.
	Team string `json:"team"`
}

// Status labels derived from the latest status update's color, or from
// the project's own flags when no status update exists.
const (
	StatusOnTrack   = "On track"
	StatusOnHold    = "On hold"
	StatusAtRisk    = "At risk"
	StatusOffTrack  = "Off track"
	StatusCompleted = "Completed"
	StatusNoStatus  = "No status"
	StatusArchived  = "Archived"
	StatusActive    = "Active"
	StatusError     = "Error"
)

// StatusLabelForColor maps an Asana status-update color to its label.
// Unknown colors (including the empty string) map to "No status".
func StatusLabelForColor(color string) string {
	switch color {
	case "green":
		return StatusOnTrack
	case "blue":
		return StatusOnHold
	case "yellow":
		return StatusAtRisk
	case "red":
		return StatusOffTrack
	case "complete":
		return StatusCompleted
	default:
		return StatusNoStatus
	}
}

// StatusLabelForFlags derives a status label from the project's own
// completion and archival flags, used when no status update is available.
func StatusLabelForFlags(completed, archived bool) string {
	switch {
	case completed:
		return StatusCompleted
	case archived:
		return StatusArchived
	default:
		return StatusActive
	}
}

// ProjectProgress is the per-project metrics record produced by one
// refresh. Records are immutable after creation; a new refresh replaces
// the whole set rather than merging.
type ProjectProgress struct {
	Name           string  `json:"name"`
	WorkspaceGID   string  `json:"workspace_gid"`
	WorkspaceName  string  `json:"workspace_name"`
	TotalTasks     int     `json:"total_tasks"`
	CompletedTasks int     `json:"completed_tasks"`
	Percentage     float64 `json:"percentage"`
	Completed      bool    `json:"completed"`
	Archived       bool    `json:"archived"`
	Status         string  `json:"status"`
	Color          string  `json:"color"`
}

// Summary holds the rollup statistics across one set of progress records.
type Summary struct {
	TotalProjects     int
	ActiveProjects    int
	CompletedProjects int
	ArchivedProjects  int
	TotalTasks        int
	CompletedTasks    int
	OverallPercentage float64
}
