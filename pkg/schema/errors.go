package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is the sentinel every validation failure unwraps to.
// Callers should match with errors.Is; the typed errors below carry the
// field and value needed for diagnostics.
var ErrValidation = errors.New("schema validation failed")

// ValidationError reports a single field that failed validation.
type ValidationError struct {
	Field  string
	Reason string

	// Value is the offending value, nil when the field was absent.
	Value any
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("field %q: %s (got %T)", e.Field, e.Reason, e.Value)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// AggregateError collects every field failure of one Validate call.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d validation errors: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap exposes the contained failures, so errors.Is(err, ErrValidation)
// and errors.As against *ValidationError see through the aggregate.
func (e *AggregateError) Unwrap() []error { return e.Errors }

// ValidationErrors extracts the individual field failures from a Validate
// error. A lone ValidationError comes back as a one-element slice; nil when
// err carries no validation failure.
func ValidationErrors(err error) []error {
	var agg *AggregateError
	if errors.As(err, &agg) {
		return agg.Errors
	}
	var single *ValidationError
	if errors.As(err, &single) {
		return []error{single}
	}
	return nil
}
