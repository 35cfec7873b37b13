// Package registry manages unit registrations: each unit's callable, its
// declared input/output schemas and the per-field reducers that make
// concurrent writes mergeable.
//
// Validation is fail-fast: an unreducible write collision is rejected at
// registration time, before any run. The registry does not know the future
// scheduling of units, so the check is conservative, any two units declaring
// the same output field need a reducer for it.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/wickerworks/osier/pkg/domain"
	"github.com/wickerworks/osier/pkg/schema"
)

// UnitFunc is the opaque callable supplied by the integrator. It receives an
// independent projected copy of parent state and returns a partial output
// record. It must never retain or mutate shared state; the projected input is
// its to keep.
type UnitFunc func(ctx context.Context, in domain.Record) (domain.Record, error)

// Unit is a registered unit: its callable plus its declared data contract.
type Unit struct {
	ID     string
	Input  *schema.StateSchema
	Output *schema.StateSchema
	Fn     UnitFunc
}

// Option configures a single registration.
type Option func(*registration)

type registration struct {
	reducers map[string]domain.Reducer
}

// WithReducer registers a combining function for an output field as part of
// the unit registration. Equivalent to calling RegisterReducer first.
func WithReducer(field string, r domain.Reducer) Option {
	return func(reg *registration) {
		reg.reducers[field] = r
	}
}

// Registry holds registered units and field reducers. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	units    map[string]*Unit
	order    []string
	reducers map[string]domain.Reducer
}

// New creates a new empty registry.
func New() *Registry {
	return &Registry{
		units:    make(map[string]*Unit),
		reducers: make(map[string]domain.Reducer),
	}
}

// RegisterReducer registers a combining function for a field.
// Registering a reducer twice overwrites the previous one.
func (r *Registry) RegisterReducer(field string, red domain.Reducer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reducers[field] = red
}

// Register adds a unit with its input and output schemas.
//
// It fails with a SchemaConflictError when an output field is already
// declared by another registered unit and no reducer covers that field.
// Reducers supplied via WithReducer count for the check but take effect only
// when the registration succeeds; a rejected registration leaves the
// registry unchanged.
func (r *Registry) Register(id string, input, output *schema.StateSchema, fn UnitFunc, opts ...Option) error {
	if id == "" {
		return fmt.Errorf("registry: unit id must not be empty")
	}
	if err := input.Err(); err != nil {
		return fmt.Errorf("registry: unit %q input schema: %w", id, err)
	}
	if err := output.Err(); err != nil {
		return fmt.Errorf("registry: unit %q output schema: %w", id, err)
	}

	reg := &registration{reducers: make(map[string]domain.Reducer)}
	for _, opt := range opts {
		opt(reg)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.units[id]; dup {
		return fmt.Errorf("registry: unit %q already registered", id)
	}

	// Fail fast on unreducible write collisions with any prior registration.
	// Reducers supplied with this registration count, but are committed to
	// the shared table only once the whole registration is accepted.
	for _, field := range output.Names() {
		if _, ok := reg.reducers[field]; ok {
			continue
		}
		if _, ok := r.reducers[field]; ok {
			continue
		}
		for _, otherID := range r.order {
			if r.units[otherID].Output.Has(field) {
				return &domain.SchemaConflictError{
					Field: field,
					Units: []string{otherID, id},
				}
			}
		}
	}

	for field, red := range reg.reducers {
		r.reducers[field] = red
	}
	r.units[id] = &Unit{ID: id, Input: input, Output: output, Fn: fn}
	r.order = append(r.order, id)
	return nil
}

// Unit returns a registered unit by ID.
func (r *Registry) Unit(id string) (*Unit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.units[id]
	return u, ok
}

// Units returns all registered units in registration order.
func (r *Registry) Units() []*Unit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Unit, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.units[id])
	}
	return out
}

// Reducer returns the registered reducer for a field.
func (r *Registry) Reducer(field string) (domain.Reducer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	red, ok := r.reducers[field]
	return red, ok
}

// Reducers returns a snapshot of the reducer table.
func (r *Registry) Reducers() map[string]domain.Reducer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]domain.Reducer, len(r.reducers))
	for field, red := range r.reducers {
		out[field] = red
	}
	return out
}

// ValidatePlan checks that every unit referenced by the plan is registered
// and re-checks per-step write collisions against the reducer table. The
// per-step check mirrors the registration check; it exists so plans built
// against a registry mutated since registration still fail before running.
func (r *Registry) ValidatePlan(plan *domain.Plan) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for stepIdx, step := range plan.Steps() {
		writers := make(map[string]string) // field -> first writer in step
		for _, id := range step.UnitIDs {
			u, ok := r.units[id]
			if !ok {
				return fmt.Errorf("step %d: unit %q: %w", stepIdx, id, domain.ErrUnknownUnit)
			}
			for _, field := range u.Output.Names() {
				first, seen := writers[field]
				if !seen {
					writers[field] = id
					continue
				}
				if _, ok := r.reducers[field]; !ok {
					return &domain.SchemaConflictError{
						Field: field,
						Units: []string{first, id},
					}
				}
			}
		}
	}
	return nil
}
