package driving

import (
	"context"

	"github.com/custodia-labs/lettergen/internal/core/domain"
)

// RunDetails is a batch run with its artifacts.
type RunDetails struct {
	Run       domain.BatchRun
	Artifacts []domain.GeneratedArtifact
}

// HistoryService exposes past batch runs.
type HistoryService interface {
	// ListRuns returns the most recent runs first, up to limit (0 = all).
	ListRuns(ctx context.Context, limit int) ([]domain.BatchRun, error)

	// GetRun returns a run and its artifacts.
	GetRun(ctx context.Context, id string) (*RunDetails, error)
}
