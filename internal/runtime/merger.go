package runtime

import (
	"fmt"

	"github.com/wickerworks/osier/pkg/domain"
	"github.com/wickerworks/osier/pkg/schema"
)

// UnitOutput pairs a completed unit's output record with its declared output
// schema. The slice passed to Merge is ordered by execution completion.
type UnitOutput struct {
	UnitID string
	Schema *schema.StateSchema
	Output domain.Record
}

// Merge combines the outputs of one fan-out step back into the parent record,
// returning a new record. The parent is never mutated; a failed merge leaves
// no partial application behind.
//
// For each field in the combined output schema (ordered by completion, then
// schema declaration):
//
//   - values a unit emitted outside its declared output schema are dropped;
//   - a field emitted by exactly one unit is adopted directly;
//   - a field emitted by several units is folded with its reducer
//     left-to-right in completion order, seeded with the parent's current
//     value when the field pre-existed;
//   - a multi-producer field with no reducer fails with an
//     UnresolvedConflictError.
//
// Fields not listed in any output schema are left untouched in the parent.
//
// Reducer application order follows completion order. With a non-commutative
// reducer the result therefore depends on which unit finished first; callers
// that need a fixed order should run those units in separate steps.
func Merge(parent domain.Record, outputs []UnitOutput, reducers map[string]domain.Reducer) (domain.Record, error) {
	type produced struct {
		unitID string
		value  any
	}

	var fieldOrder []string
	values := make(map[string][]produced)

	for _, out := range outputs {
		for _, field := range out.Schema.Names() {
			value, emitted := out.Output[field]
			if !emitted {
				// Declared but not produced this time; nothing to merge.
				continue
			}
			if _, seen := values[field]; !seen {
				fieldOrder = append(fieldOrder, field)
			}
			values[field] = append(values[field], produced{unitID: out.UnitID, value: value})
		}
	}

	next := parent.Clone()
	if next == nil {
		next = domain.NewRecord()
	}

	for _, field := range fieldOrder {
		produced := values[field]

		if len(produced) == 1 {
			next[field] = domain.CloneValue(produced[0].value)
			continue
		}

		red, ok := reducers[field]
		if !ok {
			ids := make([]string, len(produced))
			for i, p := range produced {
				ids[i] = p.unitID
			}
			return nil, &domain.UnresolvedConflictError{Field: field, Producers: ids}
		}

		acc := produced[0].value
		rest := produced[1:]
		if current, preExisted := parent[field]; preExisted {
			acc = current
			rest = produced
		}
		for _, p := range rest {
			merged, err := red(acc, p.value)
			if err != nil {
				return nil, fmt.Errorf("reducing field %q with output of unit %q: %w", field, p.unitID, err)
			}
			acc = merged
		}
		next[field] = domain.CloneValue(acc)
	}

	return next, nil
}
