package runtime

import (
	"github.com/wickerworks/osier/pkg/domain"
	"github.com/wickerworks/osier/pkg/schema"
)

// Project constructs the restricted state visible to a unit: exactly the
// fields named by the input schema, deep-copied from the parent record.
//
// The copy carries no ownership link back to the parent, so a unit can
// mutate its input freely without the parent (or a sibling running in the
// same step) ever observing it.
//
// Every declared input field must be present in the parent; an absent field
// fails with a MissingFieldError. unitID is only used for diagnostics.
func Project(parent domain.Record, in *schema.StateSchema, unitID string) (domain.Record, error) {
	child := make(domain.Record, in.Len())
	for _, field := range in.Names() {
		value, ok := parent[field]
		if !ok {
			return nil, &domain.MissingFieldError{UnitID: unitID, Field: field}
		}
		child[field] = domain.CloneValue(value)
	}
	return child, nil
}
