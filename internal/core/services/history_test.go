package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lettergen/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lettergen/internal/core/domain"
)

func TestHistoryService(t *testing.T) {
	store := memory.NewRunStore()
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveRun(ctx, &domain.BatchRun{ID: "r1", StartedAt: start}))
	require.NoError(t, store.SaveRun(ctx, &domain.BatchRun{ID: "r2", StartedAt: start.Add(time.Minute)}))
	require.NoError(t, store.SaveArtifact(ctx, &domain.GeneratedArtifact{ID: "a1", RunID: "r1"}))

	svc := NewHistoryService(store)

	runs, err := svc.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r2", runs[0].ID)

	details, err := svc.GetRun(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", details.Run.ID)
	require.Len(t, details.Artifacts, 1)

	_, err = svc.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistoryService_AfterBatch(t *testing.T) {
	f := newOrchestratorFixture()
	result := f.run(batchConfig("Ann", "Lee"), nil)

	details, err := NewHistoryService(f.store).GetRun(context.Background(), result.RunID)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchCompleted, details.Run.State)
	assert.Len(t, details.Artifacts, 2)
}
