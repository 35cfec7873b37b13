package domain

import (
	"reflect"
	"sort"
)

// RecordDelta describes the difference between two records.
// It is attached to merge events so observers can see exactly which fields a
// step touched without diffing full snapshots themselves.
type RecordDelta struct {
	// Changed contains fields that were added or whose value changed,
	// mapped to their new value.
	Changed Record `json:"changed,omitempty"`

	// Removed lists fields present before but absent after. A merge never
	// removes fields, so this is only populated by external state surgery.
	Removed []string `json:"removed,omitempty"`
}

// Empty reports whether the delta carries no changes.
func (d *RecordDelta) Empty() bool {
	return d == nil || (len(d.Changed) == 0 && len(d.Removed) == 0)
}

// DeltaOf calculates the difference between the old and new records.
// If old is nil, every field of new is reported as changed.
func DeltaOf(old, new Record) *RecordDelta {
	delta := &RecordDelta{}

	for k, v := range new {
		prev, existed := old[k]
		if !existed || !reflect.DeepEqual(prev, v) {
			if delta.Changed == nil {
				delta.Changed = make(Record)
			}
			delta.Changed[k] = v
		}
	}

	for k := range old {
		if _, still := new[k]; !still {
			delta.Removed = append(delta.Removed, k)
		}
	}
	sort.Strings(delta.Removed)

	if delta.Empty() {
		return nil
	}
	return delta
}
