package processor

import (
	"sync"
	"time"
)

// State is the lifecycle state of a run.
type State int

const (
	// NotStarted is the state before the loop begins.
	NotStarted State = iota
	// Running is the state while rows are being processed.
	Running
	// Completed is the terminal state of a run that processed every row.
	Completed
	// Failed is the terminal state of a run stopped by a fatal error.
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool { return s == Completed || s == Failed }

// Status is a snapshot of a processing run.
type Status struct {
	ID    string
	State State
	// Total is the number of rows in the table.
	Total int
	// Completed counts attempted rows, skipped ones included.
	Completed int
	// Written counts rows whose result cell was written.
	Written int
	// Skipped counts rows whose completion failed.
	Skipped int
	// Message is the failure message of a failed run.
	Message    string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Run is the handle of a processing run started in the background.
type Run struct {
	mu     sync.Mutex
	status Status
	err    error
	done   chan struct{}
}

func newRun(id string, total int) *Run {
	return &Run{
		status: Status{ID: id, State: NotStarted, Total: total},
		done:   make(chan struct{}),
	}
}

// ID returns the run identifier.
func (r *Run) ID() string {
	return r.status.ID
}

// Status returns a snapshot of the run.
func (r *Run) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Done is closed once the run reached a terminal state and the completion
// event was delivered.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run ends and returns its final status and, for a
// failed run, the error that stopped it.
func (r *Run) Wait() (Status, error) {
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status, r.err
}

func (r *Run) start(now time.Time) Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.State = Running
	r.status.StartedAt = now
	return r.status
}

func (r *Run) attempted(written bool) Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.Completed++
	if written {
		r.status.Written++
	} else {
		r.status.Skipped++
	}
	return r.status
}

func (r *Run) finish(err error, now time.Time) Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.FinishedAt = now
	if err != nil {
		r.err = err
		r.status.State = Failed
		r.status.Message = err.Error()
		return r.status
	}
	r.status.State = Completed
	return r.status
}
