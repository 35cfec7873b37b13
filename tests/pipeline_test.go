package tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wickerworks/osier"
	"github.com/wickerworks/osier/pkg/adapters/memory"
	"github.com/wickerworks/osier/pkg/domain"
	"github.com/wickerworks/osier/pkg/manifest"
	"github.com/wickerworks/osier/pkg/reducer"
	"github.com/wickerworks/osier/pkg/registry"
	"github.com/wickerworks/osier/pkg/schema"
)

// TestFanOutPipeline exercises the full composition cycle: two units read the
// same parent field, run concurrently on independent projections, and their
// outputs are merged back with a concat reducer on the shared tag field.
func TestFanOutPipeline(t *testing.T) {
	eng := osier.New()

	cleanedIn := func() *schema.StateSchema {
		return schema.New().Field("cleaned", schema.Slice(schema.Int()))
	}

	require.NoError(t, eng.Register("summarizeA",
		cleanedIn(),
		schema.New().
			Field("summaryA", schema.String()).
			Field("tag", schema.Slice(schema.String())),
		func(ctx context.Context, in domain.Record) (domain.Record, error) {
			return domain.Record{"summaryA": "s1", "tag": []any{"a"}}, nil
		},
		registry.WithReducer("tag", reducer.Concat)))

	require.NoError(t, eng.Register("summarizeB",
		cleanedIn(),
		schema.New().
			Field("summaryB", schema.String()).
			Field("tag", schema.Slice(schema.String())),
		func(ctx context.Context, in domain.Record) (domain.Record, error) {
			return domain.Record{"summaryB": "s2", "tag": []any{"b"}}, nil
		}))

	run, err := eng.Execute(context.Background(),
		osier.NewPlan().FanOut("summarizeA", "summarizeB"),
		domain.Record{"cleaned": []any{1, 2}})
	require.NoError(t, err)

	assert.Equal(t, domain.RunCompleted, run.Status)
	assert.Equal(t, []any{1, 2}, run.State["cleaned"])
	assert.Equal(t, "s1", run.State["summaryA"])
	assert.Equal(t, "s2", run.State["summaryB"])
	assert.ElementsMatch(t, []any{"a", "b"}, run.State["tag"])
}

// TestManifestDrivenPipeline runs a pipeline declared in YAML end to end.
func TestManifestDrivenPipeline(t *testing.T) {
	doc := `
units:
  - id: clean
    input:
      raw: "[string]"
    output:
      cleaned: "[string]"
  - id: upper
    input:
      cleaned: "[string]"
    output:
      shouted: "[string]"
      tag: "[string]"
  - id: count
    input:
      cleaned: "[string]"
    output:
      count: int
      tag: "[string]"
reducers:
  tag: concat
steps:
  - units: [clean]
  - units: [upper, count]
`
	m, err := manifest.Parse([]byte(doc))
	require.NoError(t, err)

	fns := map[string]registry.UnitFunc{
		"clean": func(ctx context.Context, in domain.Record) (domain.Record, error) {
			var cleaned []any
			for _, v := range in["raw"].([]any) {
				if v != "" {
					cleaned = append(cleaned, v)
				}
			}
			return domain.Record{"cleaned": cleaned}, nil
		},
		"upper": func(ctx context.Context, in domain.Record) (domain.Record, error) {
			return domain.Record{"shouted": in["cleaned"], "tag": []any{"upper"}}, nil
		},
		"count": func(ctx context.Context, in domain.Record) (domain.Record, error) {
			return domain.Record{"count": len(in["cleaned"].([]any)), "tag": []any{"count"}}, nil
		},
	}

	reg, plan, err := m.Build(fns)
	require.NoError(t, err)

	store := memory.NewStore()
	eng := osier.New(
		osier.WithRegistry(reg),
		osier.WithRunStore(store),
		osier.WithValidation(),
	)

	run, err := eng.Execute(context.Background(), plan,
		domain.Record{"raw": []any{"a", "", "b"}})
	require.NoError(t, err)

	assert.Equal(t, domain.RunCompleted, run.Status)
	assert.Equal(t, []any{"a", "b"}, run.State["cleaned"])
	assert.Equal(t, 2, run.State["count"])
	assert.ElementsMatch(t, []any{"upper", "count"}, run.State["tag"])

	// The run snapshot is inspectable from the store.
	persisted, err := store.Load(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunCompleted, persisted.Status)
	assert.Equal(t, 2, persisted.Step)
}

// TestScratchFieldsNeverLeak verifies the output-projection contract at the
// facade level: values emitted outside a unit's declared output schema do not
// reach the parent.
func TestScratchFieldsNeverLeak(t *testing.T) {
	eng := osier.New()

	require.NoError(t, eng.Register("worker",
		schema.New(),
		schema.New().Field("r", schema.String()),
		func(ctx context.Context, in domain.Record) (domain.Record, error) {
			return domain.Record{"r": "result", "g": "internal scratch"}, nil
		}))

	run, err := eng.Execute(context.Background(),
		osier.NewPlan().Step("worker"), domain.Record{})
	require.NoError(t, err)

	assert.Equal(t, "result", run.State["r"])
	assert.NotContains(t, run.State, "g")
}
