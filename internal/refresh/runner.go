// Package refresh drives the aggregation pipeline on a background
// goroutine and reports progress back to the UI through typed messages.
package refresh

import (
	"context"
	"log"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/dy-sh/asana-tracker/internal/history"
	"github.com/dy-sh/asana-tracker/internal/model"
	"github.com/dy-sh/asana-tracker/internal/progress"
)

// State represents the orchestrator's lifecycle position.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateDisplaying
	StateFailed
)

// ProgressMsg is a tea.Msg carrying the completion fraction of the
// in-flight refresh, in [0, 1].
type ProgressMsg struct {
	SessionID string
	Fraction  float64
}

// DoneMsg is a tea.Msg carrying one complete refresh: the full ordered
// record set and its rollup. Ownership of the slice passes to the UI;
// the worker retains no reference.
type DoneMsg struct {
	SessionID string
	Records   []model.ProjectProgress
	Summary   model.Summary
}

// FailedMsg is a tea.Msg sent when workspace or project enumeration
// fails and the whole run is abandoned.
type FailedMsg struct {
	SessionID string
	Err       error
}

// Runner owns the single in-flight refresh session. At most one
// session runs at a time; Start while Running is a no-op.
type Runner struct {
	history  *history.Store
	resultCh chan tea.Msg

	mu    gosync.Mutex
	state State
}

// New creates a Runner. The history store may be nil, in which case
// sessions are not recorded.
func New(h *history.Store) *Runner {
	return &Runner{
		history:  h,
		resultCh: make(chan tea.Msg, 16),
	}
}

// State returns the orchestrator's current state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start launches a refresh session against the given client unless one
// is already running. It returns the subscription command that delivers
// the session's messages to the Bubble Tea runtime, or nil when a
// session is already in flight.
func (r *Runner) Start(api progress.API) tea.Cmd {
	r.mu.Lock()
	if r.state == StateRunning {
		r.mu.Unlock()
		return nil
	}
	r.state = StateRunning
	r.mu.Unlock()

	sessionID := uuid.New().String()
	go r.run(api, sessionID)

	return r.waitForResult()
}

// WaitForNext returns a tea.Cmd that waits for the next message from
// the worker. Call it after processing each ProgressMsg to keep the
// subscription alive.
func (r *Runner) WaitForNext() tea.Cmd {
	return r.waitForResult()
}

// run executes one full refresh session on the worker goroutine. All
// UI-bound data leaves through the result channel; nothing is retained
// after the terminal message is sent.
func (r *Runner) run(api progress.API, sessionID string) {
	started := time.Now()
	ctx := context.Background()

	records, err := progress.Compute(ctx, api, func(done, total int) {
		fraction := 1.0
		if total > 0 {
			fraction = float64(done) / float64(total)
		}
		r.sendProgress(ProgressMsg{SessionID: sessionID, Fraction: fraction})
	})

	if err != nil {
		r.setState(StateFailed)
		r.record(ctx, history.Session{
			ID:        sessionID,
			StartedAt: started,
			EndedAt:   time.Now(),
			Error:     err.Error(),
		})
		r.resultCh <- FailedMsg{SessionID: sessionID, Err: err}
		return
	}

	summary := progress.Summarize(records)
	r.setState(StateDisplaying)
	r.record(ctx, history.Session{
		ID:             sessionID,
		StartedAt:      started,
		EndedAt:        time.Now(),
		Projects:       summary.TotalProjects,
		TotalTasks:     summary.TotalTasks,
		CompletedTasks: summary.CompletedTasks,
	})
	r.resultCh <- DoneMsg{
		SessionID: sessionID,
		Records:   records,
		Summary:   summary,
	}
}

// setState updates the orchestrator state.
func (r *Runner) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// record persists a session row when history is enabled.
func (r *Runner) record(ctx context.Context, s history.Session) {
	if r.history == nil {
		return
	}
	if err := r.history.Record(ctx, s); err != nil {
		log.Printf("failed to record refresh session: %v", err)
	}
}

// sendProgress sends a progress update without blocking. Intermediate
// fractions may be dropped under backpressure; terminal messages are
// always delivered via the blocking sends in run.
func (r *Runner) sendProgress(msg ProgressMsg) {
	select {
	case r.resultCh <- msg:
	default:
	}
}

// waitForResult returns a tea.Cmd that blocks on the result channel.
func (r *Runner) waitForResult() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-r.resultCh
		if !ok {
			return nil
		}
		return msg
	}
}
