package domain

import "reflect"

// Record represents a state snapshot as a mapping from field name to value.
//
// Records are passed by copy at every unit boundary: the projector hands each
// unit an independent clone of the fields it reads, and the merger builds a
// new Record instead of mutating the parent in place. The executor is the
// sole writer of parent state.
type Record map[string]any

// NewRecord creates an empty record.
func NewRecord() Record {
	return make(Record)
}

// Clone returns a deep copy of the record. Nested maps and slices are copied
// recursively so mutations on the clone never reach the original.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = CloneValue(v)
	}
	return out
}

// Has reports whether the field is present.
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// CloneValue deep-copies a single state value. Maps and slices (of any
// element type) are copied recursively; everything else is returned as-is.
// Pointer values are shared, matching JSON-style state where values are
// scalars, []any and map[string]any.
func CloneValue(v any) any {
	if v == nil {
		return nil
	}

	// Fast paths for the shapes JSON decoding produces.
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, elem := range typed {
			out[k] = CloneValue(elem)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, elem := range typed {
			out[i] = CloneValue(elem)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elem := CloneValue(rv.Index(i).Interface())
			if elem == nil {
				// Nil interface elements stay the index's zero value;
				// reflect.ValueOf(nil) is not settable.
				continue
			}
			out.Index(i).Set(reflect.ValueOf(elem))
		}
		return out.Interface()
	case reflect.Map:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			elem := CloneValue(iter.Value().Interface())
			ev := reflect.ValueOf(elem)
			if elem == nil {
				// SetMapIndex with the zero Value deletes the key; keep it
				// with the value type's zero value instead.
				ev = reflect.Zero(rv.Type().Elem())
			}
			out.SetMapIndex(iter.Key(), ev)
		}
		return out.Interface()
	default:
		return v
	}
}

// Reducer combines two values produced for the same field.
// The existing value comes first (the parent's value or the accumulated fold),
// the incoming value second. Reducers are expected to be associative in
// practice; the merge applies them left-to-right in completion order.
type Reducer func(existing, incoming any) (any, error)
