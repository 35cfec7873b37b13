package ports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wickerworks/osier/pkg/domain"
)

// RunStoreContract runs a suite of tests to verify that a RunStore
// implementation adheres to the defined interface contract.
func RunStoreContract(t *testing.T, store RunStore) {
	ctx := context.Background()

	t.Run("Save and Load", func(t *testing.T) {
		run := domain.NewRun(domain.Record{"cleaned": []any{"a", "b"}, "count": 2})
		run.Status = domain.RunRunning
		run.Step = 1

		err := store.Save(ctx, run)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, run.ID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, run.ID, loaded.ID)
		assert.Equal(t, domain.RunRunning, loaded.Status)
		assert.Equal(t, 1, loaded.Step)
		// JSON persistence may convert numbers; only require presence.
		assert.NotNil(t, loaded.State["count"])
		assert.Len(t, loaded.State["cleaned"], 2)
	})

	t.Run("Load Isolation", func(t *testing.T) {
		run := domain.NewRun(domain.Record{"tags": []any{"x"}})
		require.NoError(t, store.Save(ctx, run))

		loaded, err := store.Load(ctx, run.ID)
		require.NoError(t, err)
		loaded.State["tags"] = []any{"mutated"}
		loaded.Status = domain.RunFailed

		again, err := store.Load(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RunPending, again.Status, "mutating a loaded run must not affect the store")
		assert.Equal(t, []any{"x"}, again.State["tags"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-run")
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		run := domain.NewRun(domain.Record{})
		require.NoError(t, store.Save(ctx, run))

		err := store.Delete(ctx, run.ID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, run.ID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound, "Load after Delete should return ErrRunNotFound")
	})

	t.Run("List", func(t *testing.T) {
		first := domain.NewRun(domain.Record{})
		second := domain.NewRun(domain.Record{})
		require.NoError(t, store.Save(ctx, first))
		require.NoError(t, store.Save(ctx, second))

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, first.ID)
		assert.Contains(t, ids, second.ID)
	})
}
