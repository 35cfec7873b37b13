package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus defines the lifecycle stage of an execution.
type RunStatus string

const (
	// RunPending means the run has been created but not started.
	RunPending RunStatus = "pending"
	// RunRunning means the executor is advancing through the plan.
	RunRunning RunStatus = "running"
	// RunCompleted means every step merged successfully.
	RunCompleted RunStatus = "completed"
	// RunFailed means a step aborted; State holds the last merged parent state.
	RunFailed RunStatus = "failed"
)

// Run captures the snapshot of one plan execution.
//
// State is only ever replaced at step boundaries, after the merge barrier.
// On failure the state of already-merged prior steps is retained.
type Run struct {
	// ID uniquely identifies the run.
	ID string `json:"id"`

	// Status tracks the Pending -> Running -> {Completed, Failed} machine.
	Status RunStatus `json:"status"`

	// State is the current parent record.
	State Record `json:"state"`

	// Step is the index of the next step to execute. After a successful run
	// it equals the number of steps in the plan.
	Step int `json:"step"`

	// FailedUnits lists the units that failed in the aborting step. Populated
	// under the partial-failure policy, or with the single failing unit
	// otherwise.
	FailedUnits []string `json:"failed_units,omitempty"`

	// Error holds the failure cause when Status == RunFailed.
	Error string `json:"error,omitempty"`

	StartedAt  time.Time `json:"started_at,omitzero"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
}

// NewRun creates a pending run seeded with a copy of the initial state.
func NewRun(initial Record) *Run {
	return &Run{
		ID:     uuid.NewString(),
		Status: RunPending,
		State:  initial.Clone(),
	}
}

// Clone returns an independent copy of the run snapshot.
func (r *Run) Clone() *Run {
	if r == nil {
		return nil
	}
	out := *r
	out.State = r.State.Clone()
	if r.FailedUnits != nil {
		out.FailedUnits = append([]string(nil), r.FailedUnits...)
	}
	return &out
}

// Terminal reports whether the run reached a final status.
func (r *Run) Terminal() bool {
	return r.Status == RunCompleted || r.Status == RunFailed
}
