package runtime

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wickerworks/osier/pkg/domain"
	"github.com/wickerworks/osier/pkg/reducer"
	"github.com/wickerworks/osier/pkg/schema"
)

func out(fields ...string) *schema.StateSchema {
	s := schema.New()
	for _, f := range fields {
		s.Field(f, schema.Any())
	}
	return s
}

func TestMerge_SingleProducerAdoptsValue(t *testing.T) {
	parent := domain.Record{"summary": "old"}
	outputs := []UnitOutput{
		{UnitID: "a", Schema: out("summary"), Output: domain.Record{"summary": "new"}},
	}

	merged, err := Merge(parent, outputs, nil)
	require.NoError(t, err)
	assert.Equal(t, "new", merged["summary"], "a single producer's value is adopted unchanged")
}

func TestMerge_UntouchedFieldsRemain(t *testing.T) {
	parent := domain.Record{"cleaned": []any{1, 2}, "keep": true}
	outputs := []UnitOutput{
		{UnitID: "a", Schema: out("summary"), Output: domain.Record{"summary": "s"}},
	}

	merged, err := Merge(parent, outputs, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2}, merged["cleaned"])
	assert.Equal(t, true, merged["keep"])
}

func TestMerge_ParentNotMutated(t *testing.T) {
	parent := domain.Record{"tags": []any{"seed"}}
	outputs := []UnitOutput{
		{UnitID: "a", Schema: out("tags"), Output: domain.Record{"tags": []any{"a"}}},
		{UnitID: "b", Schema: out("tags"), Output: domain.Record{"tags": []any{"b"}}},
	}
	reducers := map[string]domain.Reducer{"tags": reducer.Concat}

	merged, err := Merge(parent, outputs, reducers)
	require.NoError(t, err)
	assert.Equal(t, []any{"seed"}, parent["tags"], "merge builds a new record")
	assert.Equal(t, []any{"seed", "a", "b"}, merged["tags"])
}

func TestMerge_MultiProducerCompletionOrder(t *testing.T) {
	// Producer A emitted first, then B: concatenation follows completion order.
	parent := domain.Record{}
	outputs := []UnitOutput{
		{UnitID: "a", Schema: out("tag"), Output: domain.Record{"tag": []any{"x1", "x2"}}},
		{UnitID: "b", Schema: out("tag"), Output: domain.Record{"tag": []any{"y1"}}},
	}
	reducers := map[string]domain.Reducer{"tag": reducer.Concat}

	merged, err := Merge(parent, outputs, reducers)
	require.NoError(t, err)
	assert.Equal(t, []any{"x1", "x2", "y1"}, merged["tag"])
}

func TestMerge_MultiProducerSeededFromParent(t *testing.T) {
	// The fold starts from the parent's current value when the field pre-existed.
	parent := domain.Record{"total": 10}
	outputs := []UnitOutput{
		{UnitID: "a", Schema: out("total"), Output: domain.Record{"total": 1}},
		{UnitID: "b", Schema: out("total"), Output: domain.Record{"total": 2}},
	}
	reducers := map[string]domain.Reducer{"total": reducer.Sum}

	merged, err := Merge(parent, outputs, reducers)
	require.NoError(t, err)
	assert.Equal(t, int64(13), merged["total"])
}

func TestMerge_UnresolvedConflict(t *testing.T) {
	outputs := []UnitOutput{
		{UnitID: "a", Schema: out("f"), Output: domain.Record{"f": 1}},
		{UnitID: "b", Schema: out("f"), Output: domain.Record{"f": 2}},
	}

	_, err := Merge(domain.Record{}, outputs, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnresolvedConflict)

	var conflict *domain.UnresolvedConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "f", conflict.Field)
	assert.Equal(t, []string{"a", "b"}, conflict.Producers)
}

func TestMerge_UndeclaredFieldsDropped(t *testing.T) {
	// Unit declared out={r} but internally computed g: g must not leak.
	outputs := []UnitOutput{
		{UnitID: "a", Schema: out("r"), Output: domain.Record{"r": "result", "g": "scratch"}},
	}

	merged, err := Merge(domain.Record{}, outputs, nil)
	require.NoError(t, err)
	assert.Equal(t, "result", merged["r"])
	assert.NotContains(t, merged, "g")
}

func TestMerge_DeclaredButNotEmitted(t *testing.T) {
	outputs := []UnitOutput{
		{UnitID: "a", Schema: out("r", "optional"), Output: domain.Record{"r": 1}},
	}

	merged, err := Merge(domain.Record{"optional": "keep"}, outputs, nil)
	require.NoError(t, err)
	assert.Equal(t, "keep", merged["optional"], "fields a unit declared but did not emit stay untouched")
}

func TestMerge_ReducerError(t *testing.T) {
	boom := errors.New("boom")
	reducers := map[string]domain.Reducer{
		"f": func(existing, incoming any) (any, error) { return nil, boom },
	}
	outputs := []UnitOutput{
		{UnitID: "a", Schema: out("f"), Output: domain.Record{"f": 1}},
		{UnitID: "b", Schema: out("f"), Output: domain.Record{"f": 2}},
	}

	_, err := Merge(domain.Record{}, outputs, reducers)
	require.ErrorIs(t, err, boom)
}

func TestMerge_OutputIsolatedFromUnitRecord(t *testing.T) {
	emitted := domain.Record{"list": []any{"a"}}
	outputs := []UnitOutput{{UnitID: "a", Schema: out("list"), Output: emitted}}

	merged, err := Merge(domain.Record{}, outputs, nil)
	require.NoError(t, err)

	emitted["list"].([]any)[0] = "mutated"
	assert.Equal(t, []any{"a"}, merged["list"], "merged state is decoupled from the unit's record")
}

func TestMerge_ReferenceScenario(t *testing.T) {
	// parent {cleaned:[1,2]}; A emits {summaryA:"s1", tag:["a"]};
	// B emits {summaryB:"s2", tag:["b"]}; concat reducer on tag.
	parent := domain.Record{"cleaned": []any{1, 2}}
	outputs := []UnitOutput{
		{UnitID: "A", Schema: out("summaryA", "tag"), Output: domain.Record{"summaryA": "s1", "tag": []any{"a"}}},
		{UnitID: "B", Schema: out("summaryB", "tag"), Output: domain.Record{"summaryB": "s2", "tag": []any{"b"}}},
	}
	reducers := map[string]domain.Reducer{"tag": reducer.Concat}

	merged, err := Merge(parent, outputs, reducers)
	require.NoError(t, err)
	assert.Equal(t, domain.Record{
		"cleaned":  []any{1, 2},
		"summaryA": "s1",
		"summaryB": "s2",
		"tag":      []any{"a", "b"},
	}, merged)
}
