package model

import (
	"fmt"
	"time"
)

// RunKind identifies which flow a run executed.
type RunKind int

const (
	// RunCrawl builds and exports the membership graph.
	RunCrawl RunKind = iota
	// RunJoin follows invites and joins rooms by alias.
	RunJoin
	// RunLeave leaves and forgets rooms.
	RunLeave
)

// String returns the name of the run kind as stored in the history.
func (k RunKind) String() string {
	switch k {
	case RunCrawl:
		return "crawl"
	case RunJoin:
		return "join"
	case RunLeave:
		return "leave"
	default:
		return "unknown"
	}
}

// ParseRunKind is the inverse of RunKind.String.
func ParseRunKind(s string) (RunKind, error) {
	switch s {
	case "crawl":
		return RunCrawl, nil
	case "join":
		return RunJoin, nil
	case "leave":
		return RunLeave, nil
	default:
		return 0, fmt.Errorf("unknown run kind %q", s)
	}
}

// RunStatus is the outcome of a run.
type RunStatus int

const (
	// StatusRunning means the run has not finished yet, or the process died
	// before recording the outcome.
	StatusRunning RunStatus = iota
	// StatusSucceeded means the flow completed.
	StatusSucceeded
	// StatusFailed means the flow stopped on a fatal error.
	StatusFailed
)

// String returns the name of the status as stored in the history.
func (s RunStatus) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ParseRunStatus is the inverse of RunStatus.String.
func ParseRunStatus(s string) (RunStatus, error) {
	switch s {
	case "running":
		return StatusRunning, nil
	case "succeeded":
		return StatusSucceeded, nil
	case "failed":
		return StatusFailed, nil
	default:
		return 0, fmt.Errorf("unknown run status %q", s)
	}
}

// Run is one entry of the run history.
//
// Only the counters of the run's own kind are filled: a crawl records
// rooms, users and servers, a join records joined, invites and left rooms,
// a leave records left rooms.
type Run struct {
	ID         string
	Kind       RunKind
	Status     RunStatus
	StartedAt  time.Time
	FinishedAt time.Time

	Rooms   int
	Users   int
	Servers int

	Joined    int
	Invites   int
	LeftRooms int

	// OutputDir is the directory a crawl exported into.
	OutputDir string

	// Error is the message of the fatal error of a failed run.
	Error string
}

// Duration returns how long the run took, or zero if it has not finished.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Finish records the end of the run. A nil err marks the run succeeded.
func (r *Run) Finish(at time.Time, err error) {
	r.FinishedAt = at
	if err != nil {
		r.Status = StatusFailed
		r.Error = err.Error()
		return
	}
	r.Status = StatusSucceeded
	r.Error = ""
}
