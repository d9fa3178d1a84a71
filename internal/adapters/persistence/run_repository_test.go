package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/excavator-go/internal/adapters/persistence"
	"github.com/andrescamacho/excavator-go/internal/domain/excavation"
	"github.com/andrescamacho/excavator-go/internal/domain/shared"
	"github.com/andrescamacho/excavator-go/test/helpers"
)

func newRun(id, agent string, started time.Time) *excavation.RunRecord {
	return &excavation.RunRecord{
		OperationID: id,
		Agent:       agent,
		Min:         shared.NewCoordinate(0, 60, 0),
		Max:         shared.NewCoordinate(3, 63, 3),
		State:       excavation.StateMining,
		Total:       64,
		Throughput:  2,
		StartedAt:   started,
	}
}

func TestRunRepository_SaveAndFind(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormRunRepository(db)
	ctx := context.Background()
	started := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	run := newRun("op-excavate-a1", "digger", started)
	require.NoError(t, repo.SaveRun(ctx, run))

	found, err := repo.FindRun(ctx, "op-excavate-a1")
	require.NoError(t, err)
	assert.Equal(t, "digger", found.Agent)
	assert.Equal(t, run.Min, found.Min)
	assert.Equal(t, run.Max, found.Max)
	assert.Equal(t, excavation.StateMining, found.State)
	assert.False(t, found.IsFinished())
	assert.Nil(t, found.FinishedAt)
}

func TestRunRepository_SaveUpdatesExisting(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormRunRepository(db)
	ctx := context.Background()
	started := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	run := newRun("op-excavate-a1", "digger", started)
	require.NoError(t, repo.SaveRun(ctx, run))

	finished := started.Add(time.Minute)
	run.State = excavation.StateCompleted
	run.Mined = 60
	run.Skipped = 4
	run.FinishedAt = &finished
	require.NoError(t, repo.SaveRun(ctx, run))

	found, err := repo.FindRun(ctx, "op-excavate-a1")
	require.NoError(t, err)
	assert.True(t, found.IsFinished())
	assert.Equal(t, 60, found.Mined)
	assert.Equal(t, 4, found.Skipped)
	require.NotNil(t, found.FinishedAt)
	assert.True(t, finished.Equal(*found.FinishedAt))

	all, err := repo.ListRuns(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRunRepository_NotFound(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormRunRepository(db)

	_, err := repo.FindRun(context.Background(), "op-missing")

	assert.ErrorIs(t, err, persistence.ErrRunNotFound)
}

func TestRunRepository_ListRuns(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormRunRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.SaveRun(ctx, newRun("op-1", "digger", base)))
	require.NoError(t, repo.SaveRun(ctx, newRun("op-2", "digger", base.Add(time.Hour))))
	require.NoError(t, repo.SaveRun(ctx, newRun("op-3", "other", base.Add(2*time.Hour))))

	runs, err := repo.ListRuns(ctx, "digger", 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "op-2", runs[0].OperationID)
	assert.Equal(t, "op-1", runs[1].OperationID)

	runs, err = repo.ListRuns(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "op-3", runs[0].OperationID)
}
