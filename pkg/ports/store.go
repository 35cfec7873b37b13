package ports

import (
	"context"

	"github.com/wickerworks/osier/pkg/domain"
)

// RunStore defines the interface for persisting run snapshots.
//
// The executor saves after every merged step and on terminal status, so an
// operator can inspect in-flight and finished runs from another process.
// This is status persistence, not checkpoint/replay: snapshots are never
// read back to resume execution.
type RunStore interface {
	// Save persists the run snapshot, keyed by run ID.
	Save(ctx context.Context, run *domain.Run) error

	// Load retrieves a run snapshot by ID.
	// Returns domain.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, runID string) (*domain.Run, error)

	// Delete removes the snapshot for a run ID.
	Delete(ctx context.Context, runID string) error

	// List returns the stored run IDs.
	List(ctx context.Context) ([]string, error)
}
