package schema

import (
	"fmt"
	"sort"
)

// Field is a named slot with a declared type.
type Field struct {
	Name string
	Type Type
}

// StateSchema is an ordered set of uniquely named fields. It declares what a
// unit reads (input schema) or writes (output schema).
//
// Construction errors (duplicate names, nil types) are accumulated and
// surfaced by Err, so builder chains stay fluent:
//
//	s := schema.New().Field("a", schema.String()).Field("b", schema.Int())
//	if err := s.Err(); err != nil { ... }
//
// Consumers that receive a schema from outside should call Err before use;
// the registry does this on every registration.
type StateSchema struct {
	fields []Field
	index  map[string]int
	err    error
}

// New creates an empty schema.
func New() *StateSchema {
	return &StateSchema{index: make(map[string]int)}
}

// Field appends a field to the schema, preserving declaration order.
func (s *StateSchema) Field(name string, t Type) *StateSchema {
	if s.err != nil {
		return s
	}
	if name == "" {
		s.err = fmt.Errorf("schema: field name must not be empty")
		return s
	}
	if t == nil {
		s.err = fmt.Errorf("schema: field %q has nil type", name)
		return s
	}
	if _, dup := s.index[name]; dup {
		s.err = fmt.Errorf("schema: duplicate field %q", name)
		return s
	}
	s.index[name] = len(s.fields)
	s.fields = append(s.fields, Field{Name: name, Type: t})
	return s
}

// Err returns the first construction error, if any.
func (s *StateSchema) Err() error {
	if s == nil {
		return nil
	}
	return s.err
}

// Len returns the number of declared fields.
func (s *StateSchema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}

// Names returns the field names in declaration order.
func (s *StateSchema) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Fields returns a copy of the declared fields in order.
func (s *StateSchema) Fields() []Field {
	if s == nil {
		return nil
	}
	return append([]Field(nil), s.fields...)
}

// Lookup returns the declared type of a field.
func (s *StateSchema) Lookup(name string) (Type, bool) {
	if s == nil {
		return nil, false
	}
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.fields[i].Type, true
}

// Has reports whether the field is declared.
func (s *StateSchema) Has(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// Validate checks that data contains every declared field and that each value
// conforms to its declared type. All failures are aggregated.
func (s *StateSchema) Validate(data map[string]any) error {
	if s == nil || len(s.fields) == 0 {
		// No schema = no validation
		return nil
	}

	var errs []error
	for _, f := range s.fields {
		value, exists := data[f.Name]
		if !exists {
			errs = append(errs, &ValidationError{Field: f.Name, Reason: "required"})
			continue
		}
		if err := f.Type.Validate(value); err != nil {
			errs = append(errs, &ValidationError{Field: f.Name, Reason: err.Error(), Value: value})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// TypeMap renders the schema as a map of field names to type expressions,
// the serialized form used by manifests.
func (s *StateSchema) TypeMap() map[string]string {
	if s == nil {
		return nil
	}
	out := make(map[string]string, len(s.fields))
	for _, f := range s.fields {
		out[f.Name] = f.Type.Name()
	}
	return out
}

// FromTypeMap builds a schema from field-name to type-expression pairs.
// Map iteration order is not deterministic, so fields are declared in
// lexicographic name order.
func FromTypeMap(typeMap map[string]string) (*StateSchema, error) {
	names := make([]string, 0, len(typeMap))
	for name := range typeMap {
		names = append(names, name)
	}
	sort.Strings(names)

	s := New()
	for _, name := range names {
		t, err := ParseType(typeMap[name])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		s.Field(name, t)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return s, nil
}
