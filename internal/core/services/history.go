package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/lettergen/internal/core/domain"
	"github.com/custodia-labs/lettergen/internal/core/ports/driven"
	"github.com/custodia-labs/lettergen/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService reads past batch runs from the run store.
type HistoryService struct {
	runStore driven.RunStore
}

// NewHistoryService creates a new history service.
func NewHistoryService(runStore driven.RunStore) *HistoryService {
	return &HistoryService{runStore: runStore}
}

// ListRuns returns the most recent runs first.
func (s *HistoryService) ListRuns(ctx context.Context, limit int) ([]domain.BatchRun, error) {
	runs, err := s.runStore.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// GetRun returns a run and its artifacts.
func (s *HistoryService) GetRun(ctx context.Context, id string) (*driving.RunDetails, error) {
	run, err := s.runStore.GetRun(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	artifacts, err := s.runStore.ListArtifacts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list artifacts of %s: %w", id, err)
	}
	return &driving.RunDetails{Run: *run, Artifacts: artifacts}, nil
}
