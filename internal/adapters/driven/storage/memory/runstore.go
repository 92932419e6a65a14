package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/lettergen/internal/core/domain"
	"github.com/custodia-labs/lettergen/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu        sync.RWMutex
	runs      map[string]domain.BatchRun
	artifacts map[string][]domain.GeneratedArtifact
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs:      make(map[string]domain.BatchRun),
		artifacts: make(map[string][]domain.GeneratedArtifact),
	}
}

// SaveRun creates or updates a run.
func (s *RunStore) SaveRun(_ context.Context, run *domain.BatchRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = *run
	return nil
}

// GetRun retrieves a run by ID.
func (s *RunStore) GetRun(_ context.Context, id string) (*domain.BatchRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &run, nil
}

// ListRuns returns runs newest first.
func (s *RunStore) ListRuns(_ context.Context, limit int) ([]domain.BatchRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]domain.BatchRun, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// SaveArtifact creates or updates an artifact.
func (s *RunStore) SaveArtifact(_ context.Context, artifact *domain.GeneratedArtifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.artifacts[artifact.RunID]
	for i := range list {
		if list[i].ID == artifact.ID {
			list[i] = *artifact
			return nil
		}
	}
	s.artifacts[artifact.RunID] = append(list, *artifact)
	return nil
}

// ListArtifacts returns a run's artifacts in creation order.
func (s *RunStore) ListArtifacts(_ context.Context, runID string) ([]domain.GeneratedArtifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.GeneratedArtifact(nil), s.artifacts[runID]...), nil
}
