// Package progress turns the raw Asana entity hierarchy into per-project
// completion records and rollup statistics.
package progress

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dy-sh/asana-tracker/internal/asana"
	"github.com/dy-sh/asana-tracker/internal/model"
)

// API is the subset of the Asana client consumed by the pipeline.
type API interface {
	ListWorkspaces(ctx context.Context) ([]asana.Workspace, error)
	ListProjects(ctx context.Context, workspaceGID string) ([]asana.Project, error)
	ListTasks(ctx context.Context, projectGID string) ([]asana.Task, error)
	ListProjectStatuses(ctx context.Context, projectGID string) ([]asana.ProjectStatus, error)
}

// ProgressFunc is invoked after each project's record is produced,
// with the number of finished projects and the total.
type ProgressFunc func(done, total int)

// Compute enumerates every workspace, project, and task visible to the
// client and produces one ProjectProgress record per project, in
// enumeration order (workspace-major, API-native project order within).
//
// Workspace or project enumeration failure aborts the whole run.
// Task or status failure for a single project degrades only that
// project's record to status "Error" with zero counts.
func Compute(
	ctx context.Context,
	api API,
	onProject ProgressFunc,
) ([]model.ProjectProgress, error) {
	projects, err := collectProjects(ctx, api)
	if err != nil {
		return nil, err
	}

	total := len(projects)
	records := make([]model.ProjectProgress, 0, total)
	for i, project := range projects {
		records = append(records, projectRecord(ctx, api, project))
		if onProject != nil {
			onProject(i+1, total)
		}
	}

	return records, nil
}

// collectProjects lists all projects across all workspaces, tagging
// each with its parent workspace's GID and display name.
func collectProjects(ctx context.Context, api API) ([]model.Project, error) {
	workspaces, err := api.ListWorkspaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerating workspaces: %w", err)
	}

	var all []model.Project
	for _, ws := range workspaces {
		projects, err := api.ListProjects(ctx, ws.GID)
		if err != nil {
			return nil, fmt.Errorf(
				"enumerating projects in %q: %w", ws.Name, err,
			)
		}

		for _, p := range projects {
			mp := model.Project{
				GID:           p.GID,
				Name:          p.Name,
				WorkspaceGID:  ws.GID,
				WorkspaceName: ws.Name,
				Completed:     p.Completed,
				Archived:      p.Archived,
				Color:         p.Color,
				Notes:         p.Notes,
			}
			if p.Owner != nil {
				mp.Owner = p.Owner.Name
			}
			if p.Team != nil {
				mp.Team = p.Team.Name
			}
			all = append(all, mp)
		}
	}

	return all, nil
}

// projectRecord counts the project's tasks and resolves its status
// label. Fetch failures degrade the record instead of failing the run.
func projectRecord(
	ctx context.Context,
	api API,
	project model.Project,
) model.ProjectProgress {
	tasks, err := api.ListTasks(ctx, project.GID)
	if err != nil {
		return errorRecord(project)
	}

	total := len(tasks)
	completed := 0
	for _, t := range tasks {
		if t.Completed {
			completed++
		}
	}

	percentage := 0.0
	if total > 0 {
		percentage = float64(completed) / float64(total) * 100
	}

	return model.ProjectProgress{
		Name:           project.Name,
		WorkspaceGID:   project.WorkspaceGID,
		WorkspaceName:  project.WorkspaceName,
		TotalTasks:     total,
		CompletedTasks: completed,
		Percentage:     percentage,
		Completed:      project.Completed,
		Archived:       project.Archived,
		Status:         statusLabel(ctx, api, project),
		Color:          project.Color,
	}
}

// statusLabel resolves the project's status from its most recent status
// update. Absence of any update, or a failed status fetch, falls back
// to a label derived from the project's own flags.
func statusLabel(ctx context.Context, api API, project model.Project) string {
	statuses, err := api.ListProjectStatuses(ctx, project.GID)
	if err != nil || len(statuses) == 0 {
		return model.StatusLabelForFlags(project.Completed, project.Archived)
	}

	latest := latestStatus(statuses)
	return model.StatusLabelForColor(latest.Color)
}

// latestStatus picks the status update with the maximal creation
// instant. Updates without a timestamp sort before any timestamped one.
func latestStatus(statuses []asana.ProjectStatus) asana.ProjectStatus {
	latest := statuses[0]
	latestAt := createdAt(latest)
	for _, s := range statuses[1:] {
		if at := createdAt(s); at.After(latestAt) {
			latest = s
			latestAt = at
		}
	}
	return latest
}

func createdAt(s asana.ProjectStatus) time.Time {
	if s.CreatedAt == nil {
		return time.Time{}
	}
	return *s.CreatedAt
}

// errorRecord builds the degraded record for a project whose task fetch
// failed, keeping the already-known identity and flags.
func errorRecord(project model.Project) model.ProjectProgress {
	return model.ProjectProgress{
		Name:          project.Name,
		WorkspaceGID:  project.WorkspaceGID,
		WorkspaceName: project.WorkspaceName,
		Completed:     project.Completed,
		Archived:      project.Archived,
		Status:        model.StatusError,
		Color:         "red",
	}
}

// WorkspaceGroup is one workspace's slice of a refresh, in display order.
type WorkspaceGroup struct {
	GID            string
	Name           string
	Records        []model.ProjectProgress
	TotalTasks     int
	CompletedTasks int
}

// GroupByWorkspace partitions records into per-workspace groups, keyed
// by workspace GID, preserving first-appearance order. Records within a
// group are sorted by completion percentage, highest first.
func GroupByWorkspace(records []model.ProjectProgress) []WorkspaceGroup {
	index := make(map[string]int)
	var groups []WorkspaceGroup

	for _, r := range records {
		i, ok := index[r.WorkspaceGID]
		if !ok {
			i = len(groups)
			index[r.WorkspaceGID] = i
			groups = append(groups, WorkspaceGroup{
				GID:  r.WorkspaceGID,
				Name: r.WorkspaceName,
			})
		}
		groups[i].Records = append(groups[i].Records, r)
		groups[i].TotalTasks += r.TotalTasks
		groups[i].CompletedTasks += r.CompletedTasks
	}

	for i := range groups {
		recs := groups[i].Records
		sort.SliceStable(recs, func(a, b int) bool {
			return recs[a].Percentage > recs[b].Percentage
		})
	}

	return groups
}

// Summarize computes the rollup statistics across one refresh.
func Summarize(records []model.ProjectProgress) model.Summary {
	var s model.Summary
	s.TotalProjects = len(records)

	for _, r := range records {
		switch {
		case r.Completed:
			s.CompletedProjects++
		case r.Archived:
			s.ArchivedProjects++
		default:
			s.ActiveProjects++
		}
		s.TotalTasks += r.TotalTasks
		s.CompletedTasks += r.CompletedTasks
	}

	if s.TotalTasks > 0 {
		s.OverallPercentage = float64(s.CompletedTasks) /
			float64(s.TotalTasks) * 100
	}

	return s
}

// WorkspaceNames returns the distinct workspace display names across
// the records, in first-appearance order. Used for the filter menu.
func WorkspaceNames(records []model.ProjectProgress) []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range records {
		if !seen[r.WorkspaceName] {
			seen[r.WorkspaceName] = true
			names = append(names, r.WorkspaceName)
		}
	}
	return names
}

// FilterByWorkspace returns the records whose workspace display name
// matches. An empty name returns records unchanged.
func FilterByWorkspace(
	records []model.ProjectProgress,
	name string,
) []model.ProjectProgress {
	if name == "" {
		return records
	}
	var out []model.ProjectProgress
	for _, r := range records {
		if r.WorkspaceName == name {
			out = append(out, r)
		}
	}
	return out
}
