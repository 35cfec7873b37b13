package runtime

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/wickerworks/osier/internal/logging"
	"github.com/wickerworks/osier/pkg/domain"
	"github.com/wickerworks/osier/pkg/ports"
	"github.com/wickerworks/osier/pkg/registry"
)

// Engine sequences plan steps: it projects parent state for every unit of a
// fan-out, runs the units concurrently, waits for all of them (barrier), and
// merges the collected outputs exactly once before advancing.
//
// The engine is the single writer of parent state. Units only ever see their
// own projected copies, so ordering between concurrently-running units'
// intermediate effects is irrelevant; only completion order affects reducer
// application order.
type Engine struct {
	reg            *registry.Registry
	logger         *slog.Logger
	hooks          domain.LifecycleHooks
	store          ports.RunStore
	partialFailure bool
	validate       bool
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithRunStore persists run snapshots at step boundaries and on terminal
// status.
func WithRunStore(store ports.RunStore) EngineOption {
	return func(e *Engine) {
		e.store = store
	}
}

// WithPartialFailure switches a fan-out step from fail-fast to
// collect-successes: outputs of completed units are merged, failed unit IDs
// are reported on the run, and the run continues.
func WithPartialFailure() EngineOption {
	return func(e *Engine) {
		e.partialFailure = true
	}
}

// WithValidation enables type validation of projected inputs and unit
// outputs against the declared schemas.
func WithValidation() EngineOption {
	return func(e *Engine) {
		e.validate = true
	}
}

// NewEngine creates an executor over the given registry.
func NewEngine(reg *registry.Registry, opts ...EngineOption) *Engine {
	e := &Engine{
		reg:    reg,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// unitResult is one completed unit invocation. Results are collected over a
// channel, so slice order is completion order.
type unitResult struct {
	unitID   string
	output   domain.Record
	duration time.Duration
	err      error
}

// Execute runs the plan from the initial state and returns the finished run.
//
// Plan validation failures surface before any unit is invoked. A failing run
// is returned alongside the error: its State retains the parent state of the
// last successfully merged step.
func (e *Engine) Execute(ctx context.Context, plan *domain.Plan, initial domain.Record) (*domain.Run, error) {
	if err := e.reg.ValidatePlan(plan); err != nil {
		return nil, err
	}

	run := domain.NewRun(initial)
	run.StartedAt = time.Now()
	run.Status = domain.RunRunning
	e.emitRun(ctx, domain.EventRunStart, run, nil)
	e.logger.InfoContext(ctx, "run started", "run_id", run.ID, "steps", plan.Len())

	for i, step := range plan.Steps() {
		if err := ctx.Err(); err != nil {
			return e.fail(ctx, run, nil, err)
		}

		e.emitStep(ctx, domain.EventStepStart, run, i, step.UnitIDs, 0, nil)

		stepStart := time.Now()
		merged, failed, err := e.runStep(ctx, run, i, step)
		if err != nil {
			return e.fail(ctx, run, failed, err)
		}

		delta := domain.DeltaOf(run.State, merged)
		run.State = merged
		run.Step = i + 1
		run.FailedUnits = append(run.FailedUnits, failed...)

		e.emitStep(ctx, domain.EventStepMerge, run, i, step.UnitIDs, time.Since(stepStart), delta)
		e.saveRun(ctx, run)
	}

	run.Status = domain.RunCompleted
	run.FinishedAt = time.Now()
	e.saveRun(ctx, run)
	e.emitRun(ctx, domain.EventRunFinish, run, nil)
	e.logger.InfoContext(ctx, "run completed", "run_id", run.ID)
	return run, nil
}

// runStep projects, fans out, joins and merges one step. The returned record
// is the new parent state; failed lists units that errored under the
// partial-failure policy.
func (e *Engine) runStep(ctx context.Context, run *domain.Run, stepIdx int, step domain.Step) (domain.Record, []string, error) {
	units := make([]*registry.Unit, 0, len(step.UnitIDs))
	inputs := make([]domain.Record, 0, len(step.UnitIDs))

	// Projection happens up front so concurrent units never observe each
	// other's mutations. A projection failure is a contract violation and
	// aborts the step regardless of the failure policy.
	for _, id := range step.UnitIDs {
		unit, ok := e.reg.Unit(id)
		if !ok {
			return nil, nil, &domain.UnitError{UnitID: id, Err: domain.ErrUnknownUnit}
		}
		child, err := Project(run.State, unit.Input, id)
		if err != nil {
			return nil, nil, err
		}
		if e.validate {
			if err := unit.Input.Validate(child); err != nil {
				return nil, nil, &domain.UnitError{UnitID: id, Err: err}
			}
		}
		units = append(units, unit)
		inputs = append(inputs, child)
	}

	stepCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan unitResult, len(units))
	var wg sync.WaitGroup
	for i, unit := range units {
		wg.Add(1)
		go func(unit *registry.Unit, input domain.Record) {
			defer wg.Done()
			e.emitUnit(ctx, domain.EventUnitStart, run, stepIdx, unit.ID, 0, nil)
			start := time.Now()
			out, err := e.invoke(stepCtx, unit, input)
			elapsed := time.Since(start)
			e.emitUnit(ctx, domain.EventUnitFinish, run, stepIdx, unit.ID, elapsed, err)
			results <- unitResult{unitID: unit.ID, output: out, duration: elapsed, err: err}
		}(unit, inputs[i])
	}

	// Barrier: the merge runs once, over the full set of completed outputs.
	wg.Wait()
	close(results)

	completed := make([]UnitOutput, 0, len(units))
	var failed []string
	var firstErr error
	for res := range results {
		if res.err != nil {
			failed = append(failed, res.unitID)
			if firstErr == nil {
				firstErr = &domain.UnitError{UnitID: res.unitID, Err: res.err}
			}
			e.logger.WarnContext(ctx, "unit failed",
				"run_id", run.ID, "step", stepIdx, "unit", res.unitID, "error", res.err)
			continue
		}
		unit, _ := e.reg.Unit(res.unitID)
		completed = append(completed, UnitOutput{UnitID: res.unitID, Schema: unit.Output, Output: res.output})
	}

	if err := ctx.Err(); err != nil {
		// Canceled steps discard all partial results; merge never runs.
		return nil, nil, err
	}
	if firstErr != nil && !e.partialFailure {
		return nil, failed, firstErr
	}

	merged, err := Merge(run.State, completed, e.reg.Reducers())
	if err != nil {
		return nil, failed, err
	}
	return merged, failed, nil
}

// invoke runs a single unit and optionally validates its emitted fields.
func (e *Engine) invoke(ctx context.Context, unit *registry.Unit, input domain.Record) (domain.Record, error) {
	if unit.Fn == nil {
		return nil, errors.New("no function bound")
	}
	out, err := unit.Fn(ctx, input)
	if err != nil {
		return nil, err
	}
	if e.validate {
		for field, value := range out {
			t, declared := unit.Output.Lookup(field)
			if !declared {
				// Undeclared fields are dropped at merge; nothing to check.
				continue
			}
			if verr := t.Validate(value); verr != nil {
				return nil, verr
			}
		}
	}
	return out, nil
}

// fail finalizes the run with a Failed status, retaining the state of
// already-merged prior steps.
func (e *Engine) fail(ctx context.Context, run *domain.Run, failed []string, cause error) (*domain.Run, error) {
	run.Status = domain.RunFailed
	run.Error = cause.Error()
	run.FailedUnits = append(run.FailedUnits, failed...)
	run.FinishedAt = time.Now()
	e.saveRun(ctx, run)
	e.emitRun(ctx, domain.EventRunFinish, run, cause)
	e.logger.ErrorContext(ctx, "run failed", "run_id", run.ID, "step", run.Step, "error", cause)
	return run, cause
}

func (e *Engine) saveRun(ctx context.Context, run *domain.Run) {
	if e.store == nil {
		return
	}
	// Persistence is best-effort observability, not a checkpoint; a failed
	// save must not abort the run.
	if err := e.store.Save(context.WithoutCancel(ctx), run); err != nil {
		e.logger.WarnContext(ctx, "failed to save run snapshot", "run_id", run.ID, "error", err)
	}
}

func (e *Engine) emitRun(ctx context.Context, typ domain.EventType, run *domain.Run, cause error) {
	hook := e.hooks.OnRunStart
	if typ == domain.EventRunFinish {
		hook = e.hooks.OnRunFinish
	}
	if hook == nil {
		return
	}
	ev := &domain.RunEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ, RunID: run.ID},
		Status:    run.Status,
	}
	if cause != nil {
		ev.Error = cause.Error()
	}
	hook(ctx, ev)
}

func (e *Engine) emitStep(ctx context.Context, typ domain.EventType, run *domain.Run, step int, unitIDs []string, duration time.Duration, delta *domain.RecordDelta) {
	hook := e.hooks.OnStepStart
	if typ == domain.EventStepMerge {
		hook = e.hooks.OnStepMerge
	}
	if hook == nil {
		return
	}
	hook(ctx, &domain.StepEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ, RunID: run.ID},
		Step:      step,
		UnitIDs:   unitIDs,
		Duration:  duration,
		Delta:     delta,
	})
}

func (e *Engine) emitUnit(ctx context.Context, typ domain.EventType, run *domain.Run, step int, unitID string, duration time.Duration, cause error) {
	hook := e.hooks.OnUnitStart
	if typ == domain.EventUnitFinish {
		hook = e.hooks.OnUnitFinish
	}
	if hook == nil {
		return
	}
	ev := &domain.UnitEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ, RunID: run.ID},
		Step:      step,
		UnitID:    unitID,
		Duration:  duration,
	}
	if cause != nil {
		ev.IsError = true
		ev.Error = cause.Error()
	}
	hook(ctx, ev)
}
