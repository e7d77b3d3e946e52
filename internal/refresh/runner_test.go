package refresh_test

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dy-sh/asana-tracker/internal/asana"
	"github.com/dy-sh/asana-tracker/internal/refresh"
	"github.com/dy-sh/asana-tracker/tests/testutil"
)

// pump drives the runner's subscription commands the way the Bubble Tea
// runtime would, collecting messages until a terminal Done or Failed
// message arrives.
func pump(t *testing.T, r *refresh.Runner, first tea.Cmd) []tea.Msg {
	t.Helper()

	var msgs []tea.Msg
	cmd := first
	deadline := time.After(5 * time.Second)

	for {
		select {
		case <-deadline:
			t.Fatal("refresh session did not finish in time")
		default:
		}

		msg := cmd()
		msgs = append(msgs, msg)

		switch msg.(type) {
		case refresh.DoneMsg, refresh.FailedMsg:
			return msgs
		}
		cmd = r.WaitForNext()
	}
}

func newTwoProjectAPI() *testutil.FakeAPI {
	api := testutil.NewFakeAPI()
	api.AddWorkspace("ws1", "W")
	api.AddProject("ws1", asana.Project{GID: "p1", Name: "P1"})
	api.AddProject("ws1", asana.Project{GID: "p2", Name: "P2"})
	api.AddTasks("p1", 4, 3)
	api.AddTasks("p2", 2, 2)
	return api
}

func TestRunnerCompletesWithDoneMsg(t *testing.T) {
	r := refresh.New(nil)
	assert.Equal(t, refresh.StateIdle, r.State())

	cmd := r.Start(newTwoProjectAPI())
	require.NotNil(t, cmd)

	msgs := pump(t, r, cmd)
	done, ok := msgs[len(msgs)-1].(refresh.DoneMsg)
	require.True(t, ok)

	require.Len(t, done.Records, 2)
	assert.Equal(t, "P1", done.Records[0].Name)
	assert.Equal(t, 2, done.Summary.TotalProjects)
	assert.Equal(t, 6, done.Summary.TotalTasks)
	assert.Equal(t, 5, done.Summary.CompletedTasks)
	assert.NotEmpty(t, done.SessionID)

	assert.Equal(t, refresh.StateDisplaying, r.State())
}

func TestRunnerProgressFractionsAreOrderedAndEndAtOne(t *testing.T) {
	r := refresh.New(nil)
	msgs := pump(t, r, r.Start(newTwoProjectAPI()))

	var fractions []float64
	sessionID := ""
	for _, m := range msgs {
		if p, ok := m.(refresh.ProgressMsg); ok {
			assert.GreaterOrEqual(t, p.Fraction, 0.0)
			assert.LessOrEqual(t, p.Fraction, 1.0)
			fractions = append(fractions, p.Fraction)
			sessionID = p.SessionID
		}
	}

	// Intermediate updates may be dropped under backpressure, but the
	// ones delivered must be monotonically increasing.
	for i := 1; i < len(fractions); i++ {
		assert.GreaterOrEqual(t, fractions[i], fractions[i-1])
	}

	if len(fractions) > 0 {
		done := msgs[len(msgs)-1].(refresh.DoneMsg)
		assert.Equal(t, done.SessionID, sessionID)
	}
}

func TestRunnerFailsOnEnumerationError(t *testing.T) {
	api := newTwoProjectAPI()
	api.WorkspacesErr = errors.New("service unavailable")

	r := refresh.New(nil)
	msgs := pump(t, r, r.Start(api))

	failed, ok := msgs[len(msgs)-1].(refresh.FailedMsg)
	require.True(t, ok)
	require.Error(t, failed.Err)
	assert.Contains(t, failed.Err.Error(), "service unavailable")

	assert.Equal(t, refresh.StateFailed, r.State())
}

func TestRunnerStartWhileRunningIsNoOp(t *testing.T) {
	api := newTwoProjectAPI()
	// Block the worker inside the workspace call so the session stays
	// in flight while we attempt a second Start.
	release := make(chan struct{})
	api.WorkspacesFunc = func() {
		<-release
	}

	r := refresh.New(nil)
	cmd := r.Start(api)
	require.NotNil(t, cmd)

	require.Eventually(t, func() bool {
		return r.State() == refresh.StateRunning
	}, time.Second, 5*time.Millisecond)

	assert.Nil(t, r.Start(api))

	close(release)
	msgs := pump(t, r, cmd)
	_, ok := msgs[len(msgs)-1].(refresh.DoneMsg)
	assert.True(t, ok)
}

func TestRunnerRecordsSessionHistory(t *testing.T) {
	store := testutil.NewTestHistory(t)

	r := refresh.New(store)
	pump(t, r, r.Start(newTwoProjectAPI()))

	last, err := store.Last(context.Background())
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, 2, last.Projects)
	assert.Equal(t, 6, last.TotalTasks)
	assert.Equal(t, 5, last.CompletedTasks)
	assert.False(t, last.Failed())
}

func TestRunnerRecordsFailedSession(t *testing.T) {
	store := testutil.NewTestHistory(t)
	api := newTwoProjectAPI()
	api.WorkspacesErr = errors.New("boom")

	r := refresh.New(store)
	pump(t, r, r.Start(api))

	last, err := store.Last(context.Background())
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, last.Failed())
	assert.Zero(t, last.Projects)
}

func TestRunnerCanRunAgainAfterCompletion(t *testing.T) {
	r := refresh.New(nil)
	pump(t, r, r.Start(newTwoProjectAPI()))
	require.Equal(t, refresh.StateDisplaying, r.State())

	cmd := r.Start(newTwoProjectAPI())
	require.NotNil(t, cmd)
	msgs := pump(t, r, cmd)
	_, ok := msgs[len(msgs)-1].(refresh.DoneMsg)
	assert.True(t, ok)
}
