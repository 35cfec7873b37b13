// Package memory provides an in-memory RunStore, the default for embedded
// use and tests.
package memory

import (
	"context"
	"sync"

	"github.com/wickerworks/osier/pkg/domain"
)

// Store implements ports.RunStore in memory.
// Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	runs map[string]*domain.Run
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		runs: make(map[string]*domain.Run),
	}
}

// Save persists a copy of the run snapshot in memory.
func (s *Store) Save(ctx context.Context, run *domain.Run) error {
	snapshot := run.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = snapshot
	return nil
}

// Load retrieves a copy of the run snapshot, so callers can't mutate store
// state through the returned pointer.
func (s *Store) Load(ctx context.Context, runID string) (*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return run.Clone(), nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, runID)
	return nil
}

// List returns the stored run IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.runs))
	for id := range s.runs {
		ids = append(ids, id)
	}
	return ids, nil
}
