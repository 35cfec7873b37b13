// Package reducer provides built-in combining functions for fields written by
// several units in one fan-out step. The merge applies a field's reducer
// left-to-right over the produced values in completion order.
package reducer

import (
	"fmt"
	"reflect"

	"github.com/wickerworks/osier/pkg/domain"
)

// Concat appends the incoming list to the existing list, returning a new
// []any. Both values must be slices; element types are preserved as-is.
func Concat(existing, incoming any) (any, error) {
	left, err := toSlice(existing)
	if err != nil {
		return nil, fmt.Errorf("concat: existing value: %w", err)
	}
	right, err := toSlice(incoming)
	if err != nil {
		return nil, fmt.Errorf("concat: incoming value: %w", err)
	}

	out := make([]any, 0, len(left)+len(right))
	out = append(out, left...)
	out = append(out, right...)
	return out, nil
}

// Sum adds two numeric values. Integers stay integers; mixing in a float
// promotes the result to float64.
func Sum(existing, incoming any) (any, error) {
	li, lOK := toInt(existing)
	ri, rOK := toInt(incoming)
	if lOK && rOK {
		return li + ri, nil
	}

	lf, err := toFloat(existing)
	if err != nil {
		return nil, fmt.Errorf("sum: existing value: %w", err)
	}
	rf, err := toFloat(incoming)
	if err != nil {
		return nil, fmt.Errorf("sum: incoming value: %w", err)
	}
	return lf + rf, nil
}

// Last keeps the most recently produced value (last writer wins).
func Last(existing, incoming any) (any, error) {
	return incoming, nil
}

// First keeps the earliest produced value (first writer wins).
func First(existing, incoming any) (any, error) {
	return existing, nil
}

// Union merges two string-keyed maps into a new map[string]any. Keys present
// in both take the incoming value.
func Union(existing, incoming any) (any, error) {
	left, err := toMap(existing)
	if err != nil {
		return nil, fmt.Errorf("union: existing value: %w", err)
	}
	right, err := toMap(incoming)
	if err != nil {
		return nil, fmt.Errorf("union: incoming value: %w", err)
	}

	out := make(map[string]any, len(left)+len(right))
	for k, v := range left {
		out[k] = v
	}
	for k, v := range right {
		out[k] = v
	}
	return out, nil
}

// StringJoin returns a reducer that joins two strings with the separator.
func StringJoin(sep string) domain.Reducer {
	return func(existing, incoming any) (any, error) {
		left, ok := existing.(string)
		if !ok {
			return nil, fmt.Errorf("join: expected string, got %T", existing)
		}
		right, ok := incoming.(string)
		if !ok {
			return nil, fmt.Errorf("join: expected string, got %T", incoming)
		}
		if left == "" {
			return right, nil
		}
		return left + sep + right, nil
	}
}

// builtins maps manifest reducer names to implementations.
var builtins = map[string]domain.Reducer{
	"concat": Concat,
	"sum":    Sum,
	"last":   Last,
	"first":  First,
	"union":  Union,
	"join":   StringJoin(" "),
}

// Lookup resolves a built-in reducer by name.
func Lookup(name string) (domain.Reducer, bool) {
	r, ok := builtins[name]
	return r, ok
}

// Names lists the built-in reducer names.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	return names
}

func toSlice(v any) ([]any, error) {
	if out, ok := v.([]any); ok {
		return out, nil
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("expected slice, got %T", v)
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

func toMap(v any) (map[string]any, error) {
	if out, ok := v.(map[string]any); ok {
		return out, nil
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("expected string-keyed map, got %T", v)
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, nil
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		if i, ok := toInt(v); ok {
			return float64(i), nil
		}
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}
