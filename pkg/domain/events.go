package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRunStart   EventType = "run_start"
	EventRunFinish  EventType = "run_finish"
	EventStepStart  EventType = "step_start"
	EventStepMerge  EventType = "step_merge"
	EventUnitStart  EventType = "unit_start"
	EventUnitFinish EventType = "unit_finish"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
}

// RunEvent marks the start or end of a run.
type RunEvent struct {
	EventBase
	Status RunStatus `json:"status"`
	Error  string    `json:"error,omitempty"`
}

// StepEvent marks the start of a step or the completion of its merge.
type StepEvent struct {
	EventBase
	Step     int           `json:"step"`
	UnitIDs  []string      `json:"unit_ids"`
	Duration time.Duration `json:"duration,omitempty"`

	// Delta describes the parent-state fields changed by the merge.
	// Only set on EventStepMerge.
	Delta *RecordDelta `json:"delta,omitempty"`
}

// UnitEvent marks a single unit invocation inside a fan-out.
type UnitEvent struct {
	EventBase
	Step     int           `json:"step"`
	UnitID   string        `json:"unit_id"`
	Duration time.Duration `json:"duration,omitempty"`
	IsError  bool          `json:"is_error,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
// Nil hooks are skipped. Hooks run synchronously on the executor goroutine;
// keep them fast or hand off to a channel.
type LifecycleHooks struct {
	OnRunStart   func(context.Context, *RunEvent)
	OnRunFinish  func(context.Context, *RunEvent)
	OnStepStart  func(context.Context, *StepEvent)
	OnStepMerge  func(context.Context, *StepEvent)
	OnUnitStart  func(context.Context, *UnitEvent)
	OnUnitFinish func(context.Context, *UnitEvent)
}
