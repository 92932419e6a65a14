package driven

import (
	"context"

	"github.com/custodia-labs/lettergen/internal/core/domain"
)

// RunStore persists batch runs and their artifacts.
type RunStore interface {
	// SaveRun creates or updates a run record.
	SaveRun(ctx context.Context, run *domain.BatchRun) error

	// GetRun retrieves a run by ID.
	// Returns domain.ErrNotFound if the run does not exist.
	GetRun(ctx context.Context, id string) (*domain.BatchRun, error)

	// ListRuns returns the most recent runs first, up to limit (0 = all).
	ListRuns(ctx context.Context, limit int) ([]domain.BatchRun, error)

	// SaveArtifact creates or updates an artifact record.
	SaveArtifact(ctx context.Context, artifact *domain.GeneratedArtifact) error

	// ListArtifacts returns the artifacts of a run in creation order.
	ListArtifacts(ctx context.Context, runID string) ([]domain.GeneratedArtifact, error)
}
