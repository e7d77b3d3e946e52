package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dy-sh/asana-tracker/internal/keys"
	"github.com/dy-sh/asana-tracker/internal/model"
)

func newTestModel(showArchived bool) Model {
	return New(keys.DefaultKeyMap(), 120, 40, showArchived, "")
}

func sampleRecords() []model.ProjectProgress {
	return []model.ProjectProgress{
		{Name: "p1", WorkspaceGID: "w1", WorkspaceName: "Alpha", TotalTasks: 4, CompletedTasks: 2, Percentage: 50},
		{Name: "p2", WorkspaceGID: "w2", WorkspaceName: "Beta", TotalTasks: 2, CompletedTasks: 2, Percentage: 100},
		{Name: "p3", WorkspaceGID: "w1", WorkspaceName: "Alpha", Archived: true, Status: model.StatusArchived},
	}
}

func TestCycleFilterWalksWorkspacesAndWrapsAround(t *testing.T) {
	m := newTestModel(true)
	m.SetSession(sampleRecords())

	assert.Equal(t, FilterAll, m.Filter())

	m.CycleFilter()
	assert.Equal(t, "Alpha", m.Filter())

	m.CycleFilter()
	assert.Equal(t, "Beta", m.Filter())

	m.CycleFilter()
	assert.Equal(t, FilterAll, m.Filter())
}

func TestCycleFilterWithoutDataIsNoOp(t *testing.T) {
	m := newTestModel(true)
	m.CycleFilter()
	assert.Equal(t, FilterAll, m.Filter())
}

func TestSetSessionDropsStaleFilter(t *testing.T) {
	m := newTestModel(true)
	m.SetSession(sampleRecords())
	m.CycleFilter()
	assert.Equal(t, "Alpha", m.Filter())

	// The next refresh no longer contains the filtered workspace.
	m.SetSession([]model.ProjectProgress{
		{Name: "p9", WorkspaceGID: "w9", WorkspaceName: "Gamma"},
	})
	assert.Equal(t, FilterAll, m.Filter())
}

func TestSetSessionKeepsMatchingFilter(t *testing.T) {
	m := newTestModel(true)
	m.SetSession(sampleRecords())
	m.CycleFilter()

	m.SetSession(sampleRecords())
	assert.Equal(t, "Alpha", m.Filter())
}

func TestToggleArchivedHidesArchivedRows(t *testing.T) {
	m := newTestModel(true)
	m.SetSession(sampleRecords())
	assert.Equal(t, 3, m.summary.TotalProjects)

	m.ToggleArchived()
	assert.Equal(t, 2, m.summary.TotalProjects)
	assert.Equal(t, 0, m.summary.ArchivedProjects)

	m.ToggleArchived()
	assert.Equal(t, 3, m.summary.TotalProjects)
}

func TestSetFractionClamps(t *testing.T) {
	m := newTestModel(true)
	m.StartLoading()

	m.SetFraction(-0.5)
	assert.Equal(t, 0.0, m.fraction)

	m.SetFraction(1.7)
	assert.Equal(t, 1.0, m.fraction)

	assert.True(t, m.Loading())
	m.SetSession(nil)
	assert.False(t, m.Loading())
}
