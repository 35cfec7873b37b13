/*
Package osier is a state projection and merge engine for composing
independent units of work over a shared, schema-checked state record.

Each unit declares the fields it reads (input schema) and the fields it
writes (output schema). Before a unit runs, the engine projects the parent
state down to the unit's declared inputs and hands it an independent copy.
Units scheduled in the same step run concurrently on their own copies; after
all of them complete, the engine merges their outputs back into the parent
state exactly once, applying per-field reducers wherever several units wrote
the same field.

This converts the key-collision bug class of shared dictionary-style state
into a registration-time check: declaring two writers for a field without a
reducer fails before any run.

# Usage

	eng := osier.New()

	in := schema.New().Field("cleaned", schema.Slice(schema.Int()))

	err := eng.Register("summarize", in,
		schema.New().
			Field("summary", schema.String()).
			Field("tag", schema.Slice(schema.String())),
		summarizeFn,
		registry.WithReducer("tag", reducer.Concat),
	)
	if err != nil {
		log.Fatal(err)
	}
	// ... register "classify" the same way ...

	plan := osier.NewPlan().FanOut("summarize", "classify")

	run, err := eng.Execute(ctx, plan, domain.Record{"cleaned": []any{1, 2}})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(run.State)

# Architecture

The engine core is pure and in-process: no wire format and no persisted
execution state. Optional adapters (pkg/adapters) persist run snapshots for
inspection, and pkg/observability bridges lifecycle hooks to Prometheus.
Pipelines can also be described declaratively with pkg/manifest and inspected
with the osier CLI.
*/
package osier
