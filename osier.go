package osier

import (
	"context"
	"log/slog"

	"github.com/wickerworks/osier/internal/logging"
	"github.com/wickerworks/osier/internal/runtime"
	"github.com/wickerworks/osier/pkg/domain"
	"github.com/wickerworks/osier/pkg/ports"
	"github.com/wickerworks/osier/pkg/registry"
	"github.com/wickerworks/osier/pkg/schema"
)

// Version is the library version, reported by the CLI.
const Version = "0.4.0"

// Engine is the high-level entry point for the osier library.
// It wraps the internal executor and provides a simplified API for consumers.
type Engine struct {
	registry    *registry.Registry
	runtimeOpts []runtime.EngineOption
	logger      *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithLifecycleHooks(hooks))
	}
}

// WithRunStore persists run snapshots at step boundaries and on completion.
func WithRunStore(store ports.RunStore) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithRunStore(store))
	}
}

// WithPartialFailure makes fan-out steps collect successes instead of
// failing the run on the first unit error; failed unit IDs are reported on
// the run.
func WithPartialFailure() Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithPartialFailure())
	}
}

// WithValidation enables type validation of projected inputs and unit
// outputs against their declared schemas.
func WithValidation() Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithValidation())
	}
}

// WithRegistry injects a pre-populated unit registry.
func WithRegistry(reg *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = reg
	}
}

// New initializes a new osier Engine.
func New(opts ...Option) *Engine {
	eng := &Engine{
		registry: registry.New(),
		logger:   logging.NewNop(),
	}

	for _, opt := range opts {
		opt(eng)
	}

	return eng
}

// Register adds a unit with its input and output schemas. Fails fast with a
// SchemaConflict when the unit's output collides with an already registered
// unit's output and no reducer covers the field.
func (e *Engine) Register(id string, input, output *schema.StateSchema, fn registry.UnitFunc, opts ...registry.Option) error {
	return e.registry.Register(id, input, output, fn, opts...)
}

// RegisterReducer registers a combining function for a field.
func (e *Engine) RegisterReducer(field string, red domain.Reducer) {
	e.registry.RegisterReducer(field, red)
}

// Registry exposes the underlying unit registry, e.g. for introspection.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// NewPlan creates an empty plan builder.
func NewPlan() *domain.Plan {
	return domain.NewPlan()
}

// Execute runs the plan from the initial state and returns the finished run:
// its State is the final parent state on success, or the state of the last
// successfully merged step on failure.
func (e *Engine) Execute(ctx context.Context, plan *domain.Plan, initial domain.Record) (*domain.Run, error) {
	opts := append([]runtime.EngineOption{runtime.WithLogger(e.logger)}, e.runtimeOpts...)
	exec := runtime.NewEngine(e.registry, opts...)
	return exec.Execute(ctx, plan, initial)
}
