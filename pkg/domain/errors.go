package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the mechanism's failure taxonomy.
// Callers should match with errors.Is; the typed errors below carry the
// identifiers needed for diagnostics.
var (
	// ErrMissingField is returned when a projection requests a field that is
	// absent from the parent record.
	ErrMissingField = errors.New("missing field")

	// ErrSchemaConflict is returned at registration (or plan build) time when
	// two units declare the same output field without a reducer for it.
	ErrSchemaConflict = errors.New("schema conflict")

	// ErrUnresolvedConflict is returned when a merge finds multiple producers
	// for a field with no registered reducer. Unreachable if registration
	// validation is honored, but checked defensively.
	ErrUnresolvedConflict = errors.New("unresolved merge conflict")

	// ErrUnitFailure is returned when a unit function returns an error.
	ErrUnitFailure = errors.New("unit failure")

	// ErrUnknownUnit is returned when a plan references an unregistered unit.
	ErrUnknownUnit = errors.New("unknown unit")

	// ErrRunNotFound is returned when a run ID cannot be found in a store.
	ErrRunNotFound = errors.New("run not found")
)

// MissingFieldError reports a projection failure for a specific unit input.
type MissingFieldError struct {
	UnitID string
	Field  string
}

func (e *MissingFieldError) Error() string {
	if e.UnitID == "" {
		return fmt.Sprintf("field %q is absent from parent state", e.Field)
	}
	return fmt.Sprintf("unit %q requires field %q which is absent from parent state", e.UnitID, e.Field)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// SchemaConflictError reports an unreducible concurrent-write collision
// detected before any run.
type SchemaConflictError struct {
	Field string
	Units []string
}

func (e *SchemaConflictError) Error() string {
	return fmt.Sprintf("field %q is written by units %s but has no reducer registered",
		e.Field, strings.Join(e.Units, ", "))
}

func (e *SchemaConflictError) Unwrap() error { return ErrSchemaConflict }

// UnresolvedConflictError reports a run-time merge collision. The defensive
// counterpart of SchemaConflictError.
type UnresolvedConflictError struct {
	Field     string
	Producers []string
}

func (e *UnresolvedConflictError) Error() string {
	return fmt.Sprintf("field %q was produced by units %s in one step but has no reducer",
		e.Field, strings.Join(e.Producers, ", "))
}

func (e *UnresolvedConflictError) Unwrap() error { return ErrUnresolvedConflict }

// UnitError wraps the error returned by a unit function.
type UnitError struct {
	UnitID string
	Err    error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("unit %q failed: %v", e.UnitID, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *UnitError) Unwrap() []error { return []error{ErrUnitFailure, e.Err} }
