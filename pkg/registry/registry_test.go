package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wickerworks/osier/pkg/domain"
	"github.com/wickerworks/osier/pkg/reducer"
	"github.com/wickerworks/osier/pkg/schema"
)

func noop(ctx context.Context, in domain.Record) (domain.Record, error) {
	return domain.Record{}, nil
}

func TestRegister_Basic(t *testing.T) {
	reg := New()

	err := reg.Register("a",
		schema.New().Field("in", schema.String()),
		schema.New().Field("out", schema.String()),
		noop)
	require.NoError(t, err)

	unit, ok := reg.Unit("a")
	require.True(t, ok)
	assert.Equal(t, "a", unit.ID)
	assert.Equal(t, []string{"out"}, unit.Output.Names())
}

func TestRegister_DuplicateID(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register("a", schema.New(), schema.New(), noop))

	err := reg.Register("a", schema.New(), schema.New(), noop)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegister_ConflictWithoutReducer(t *testing.T) {
	reg := New()
	out := func() *schema.StateSchema {
		return schema.New().Field("f", schema.Slice(schema.String()))
	}

	require.NoError(t, reg.Register("a", schema.New(), out(), noop))

	// Second writer of "f" with no reducer must fail at registration,
	// never at run time.
	err := reg.Register("b", schema.New(), out(), noop)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSchemaConflict)

	var conflict *domain.SchemaConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "f", conflict.Field)
	assert.Equal(t, []string{"a", "b"}, conflict.Units)

	// The failed registration leaves no trace.
	_, ok := reg.Unit("b")
	assert.False(t, ok)
}

func TestRegister_ConflictResolvedByReducer(t *testing.T) {
	reg := New()
	out := func() *schema.StateSchema {
		return schema.New().Field("tag", schema.Slice(schema.String()))
	}

	require.NoError(t, reg.Register("a", schema.New(), out(), noop,
		WithReducer("tag", reducer.Concat)))
	require.NoError(t, reg.Register("b", schema.New(), out(), noop))

	_, ok := reg.Reducer("tag")
	assert.True(t, ok)
}

func TestRegister_ReducerOnSecondRegistration(t *testing.T) {
	reg := New()
	out := func() *schema.StateSchema {
		return schema.New().Field("tag", schema.Slice(schema.String()))
	}

	require.NoError(t, reg.Register("a", schema.New(), out(), noop))

	// A reducer supplied with the later registration still resolves the
	// collision with the earlier writer.
	require.NoError(t, reg.Register("b", schema.New(), out(), noop,
		WithReducer("tag", reducer.Concat)))
}

func TestRegister_RejectedRegistrationLeavesNoReducers(t *testing.T) {
	reg := New()

	require.NoError(t, reg.Register("a", schema.New(),
		schema.New().Field("f", schema.String()), noop))

	// "b" collides on "f"; its reducer for the unrelated field "g" must not
	// survive the rejection.
	err := reg.Register("b", schema.New(),
		schema.New().
			Field("f", schema.String()).
			Field("g", schema.Slice(schema.String())),
		noop,
		WithReducer("g", reducer.Concat))
	require.ErrorIs(t, err, domain.ErrSchemaConflict)

	_, ok := reg.Reducer("g")
	assert.False(t, ok)

	// With "g" unreduced, two later writers of it still conflict.
	gOut := func() *schema.StateSchema {
		return schema.New().Field("g", schema.Slice(schema.String()))
	}
	require.NoError(t, reg.Register("c", schema.New(), gOut(), noop))
	err = reg.Register("d", schema.New(), gOut(), noop)
	assert.ErrorIs(t, err, domain.ErrSchemaConflict)
}

func TestRegister_InvalidSchema(t *testing.T) {
	reg := New()
	bad := schema.New().Field("x", schema.String()).Field("x", schema.Int())

	err := reg.Register("a", bad, schema.New(), noop)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate field")
}

func TestUnits_RegistrationOrder(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register("b", schema.New(), schema.New().Field("x", schema.Int()), noop))
	require.NoError(t, reg.Register("a", schema.New(), schema.New().Field("y", schema.Int()), noop))

	units := reg.Units()
	require.Len(t, units, 2)
	assert.Equal(t, "b", units[0].ID)
	assert.Equal(t, "a", units[1].ID)
}

func TestValidatePlan(t *testing.T) {
	reg := New()
	out := func(field string) *schema.StateSchema {
		return schema.New().Field(field, schema.Slice(schema.String()))
	}
	require.NoError(t, reg.Register("a", schema.New(), out("x"), noop))
	require.NoError(t, reg.Register("b", schema.New(), out("y"), noop))

	err := reg.ValidatePlan(domain.NewPlan().FanOut("a", "b"))
	require.NoError(t, err)

	err = reg.ValidatePlan(domain.NewPlan().Step("missing"))
	require.ErrorIs(t, err, domain.ErrUnknownUnit)
}

func TestReducers_Snapshot(t *testing.T) {
	reg := New()
	reg.RegisterReducer("tag", reducer.Concat)

	snap := reg.Reducers()
	require.Contains(t, snap, "tag")

	// Mutating the snapshot must not affect the registry.
	delete(snap, "tag")
	_, ok := reg.Reducer("tag")
	assert.True(t, ok)
}
