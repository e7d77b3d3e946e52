// Package testutil provides shared test fixtures: a scripted in-memory
// Asana API and an in-memory refresh-history store.
package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/dy-sh/asana-tracker/internal/asana"
)

// FakeAPI is a scripted implementation of the pipeline's API interface.
// Entities are keyed by their parent's GID; per-key errors simulate
// transport failures at any level of the hierarchy.
type FakeAPI struct {
	Workspaces []asana.Workspace
	Projects   map[string][]asana.Project
	Tasks      map[string][]asana.Task
	Statuses   map[string][]asana.ProjectStatus

	WorkspacesErr error
	ProjectsErr   map[string]error
	TasksErr      map[string]error
	StatusesErr   map[string]error

	// WorkspacesFunc, when set, runs at the start of ListWorkspaces.
	// Tests use it to hold a refresh in flight.
	WorkspacesFunc func()

	// Calls counts list invocations by method name.
	Calls map[string]int
}

// NewFakeAPI creates an empty FakeAPI ready for population.
func NewFakeAPI() *FakeAPI {
	return &FakeAPI{
		Projects:    make(map[string][]asana.Project),
		Tasks:       make(map[string][]asana.Task),
		Statuses:    make(map[string][]asana.ProjectStatus),
		ProjectsErr: make(map[string]error),
		TasksErr:    make(map[string]error),
		StatusesErr: make(map[string]error),
		Calls:       make(map[string]int),
	}
}

func (f *FakeAPI) ListWorkspaces(_ context.Context) ([]asana.Workspace, error) {
	f.Calls["workspaces"]++
	if f.WorkspacesFunc != nil {
		f.WorkspacesFunc()
	}
	if f.WorkspacesErr != nil {
		return nil, f.WorkspacesErr
	}
	return f.Workspaces, nil
}

func (f *FakeAPI) ListProjects(
	_ context.Context,
	workspaceGID string,
) ([]asana.Project, error) {
	f.Calls["projects"]++
	if err := f.ProjectsErr[workspaceGID]; err != nil {
		return nil, err
	}
	return f.Projects[workspaceGID], nil
}

func (f *FakeAPI) ListTasks(
	_ context.Context,
	projectGID string,
) ([]asana.Task, error) {
	f.Calls["tasks"]++
	if err := f.TasksErr[projectGID]; err != nil {
		return nil, err
	}
	return f.Tasks[projectGID], nil
}

func (f *FakeAPI) ListProjectStatuses(
	_ context.Context,
	projectGID string,
) ([]asana.ProjectStatus, error) {
	f.Calls["statuses"]++
	if err := f.StatusesErr[projectGID]; err != nil {
		return nil, err
	}
	return f.Statuses[projectGID], nil
}

// AddWorkspace registers a workspace.
func (f *FakeAPI) AddWorkspace(gid, name string) {
	f.Workspaces = append(f.Workspaces, asana.Workspace{GID: gid, Name: name})
}

// AddProject registers a project under a workspace.
func (f *FakeAPI) AddProject(workspaceGID string, p asana.Project) {
	f.Projects[workspaceGID] = append(f.Projects[workspaceGID], p)
}

// AddTasks registers tasks under a project: total tasks of which the
// first completed are done.
func (f *FakeAPI) AddTasks(projectGID string, total, completed int) {
	for i := 0; i < total; i++ {
		f.Tasks[projectGID] = append(f.Tasks[projectGID], asana.Task{
			GID:       fmt.Sprintf("%s-t%d", projectGID, i),
			Completed: i < completed,
		})
	}
}

// AddStatus registers a status update on a project with the given color
// and creation time.
func (f *FakeAPI) AddStatus(projectGID, color string, createdAt time.Time) {
	f.Statuses[projectGID] = append(
		f.Statuses[projectGID],
		asana.ProjectStatus{Color: color, CreatedAt: &createdAt},
	)
}
