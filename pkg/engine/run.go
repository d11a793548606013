// Package engine executes runs: ordered steps, fail-fast, one status.
package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/VolaTeQ/conveyor/pkg/trigger"
)

// Status is the lifecycle state of a run.
// pending -> running -> succeeded | failed; both outcomes are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// StepOutcome records one step's result. Error text has already been
// redacted by the step that produced it.
type StepOutcome struct {
	Name    string    `json:"name"`
	Status  Status    `json:"status"`
	Error   string    `json:"error,omitempty"`
	Started time.Time `json:"started"`
	Ended   time.Time `json:"ended"`
}

// Run is one execution instance of a job, triggered by one event.
type Run struct {
	ID      string        `json:"id"`
	Job     string        `json:"job"`
	Event   trigger.Event `json:"event"`
	Status  Status        `json:"status"`
	Steps   []StepOutcome `json:"steps"`
	Started time.Time     `json:"started,omitzero"`
	Ended   time.Time     `json:"ended,omitzero"`
}

// NewRun creates a pending run for the given job and event.
func NewRun(job string, ev trigger.Event) *Run {
	return &Run{
		ID:     uuid.NewString(),
		Job:    job,
		Event:  ev,
		Status: StatusPending,
	}
}

// Failed reports whether at least one step failed. A run's status is
// failed if and only if this holds.
func (r *Run) Failed() bool {
	for _, s := range r.Steps {
		if s.Status == StatusFailed {
			return true
		}
	}
	return false
}
