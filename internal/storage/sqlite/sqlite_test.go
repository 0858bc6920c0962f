package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrun/wrun/internal/log"
	"github.com/wrun/wrun/internal/model"
	"github.com/wrun/wrun/internal/storage/sqlite"
)

func runFixture(id string, startedAt time.Time) model.Run {
	return model.Run{
		ID:         id,
		TaskFile:   "suites/swap.yaml",
		StartedAt:  startedAt,
		FinishedAt: startedAt.Add(time.Minute),
		Report: model.Report{
			Success:   false,
			Completed: 1,
			Failed:    1,
			Total:     2,
			Results: []model.TaskResult{
				{
					TaskID:  "login",
					Success: true,
					Steps: []model.StepResult{
						{Action: model.ActionNavigate, Success: true, Duration: time.Second},
					},
				},
				{
					TaskID: "swap",
					Error:  "step 0 (click): element not found",
				},
			},
		},
	}
}

func newRepo(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
		Logger: log.Noop,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	startedAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	run := runFixture("run-1", startedAt)
	require.NoError(t, repo.CreateRun(ctx, run))

	got, err := repo.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "suites/swap.yaml", got.TaskFile)
	assert.Equal(t, 2, got.Report.Total)
	assert.False(t, got.Report.Success)
	require.Len(t, got.Report.Results, 2)
	assert.Equal(t, "login", got.Report.Results[0].TaskID)
	assert.Equal(t, "step 0 (click): element not found", got.Report.Results[1].Error)
	assert.True(t, got.StartedAt.Equal(startedAt))

	require.NoError(t, repo.DeleteRun(ctx, "run-1"))

	_, err = repo.GetRun(ctx, "run-1")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestRepositoryCreateRunDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	run := runFixture("run-1", time.Now().UTC())
	require.NoError(t, repo.CreateRun(ctx, run))

	err := repo.CreateRun(ctx, run)
	require.Error(t, err)
	require.ErrorIs(t, err, model.ErrAlreadyExists)
}

func TestRepositoryListRunsOrder(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.CreateRun(ctx, runFixture("old", base)))
	require.NoError(t, repo.CreateRun(ctx, runFixture("newer", base.Add(time.Hour))))
	require.NoError(t, repo.CreateRun(ctx, runFixture("newest", base.Add(2*time.Hour))))

	runs, err := repo.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	ids := make([]string, 0, len(runs))
	for _, r := range runs {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"newest", "newer", "old"}, ids)
}

func TestRepositoryDeleteMissingRun(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	err := repo.DeleteRun(ctx, "ghost")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestRepositoryPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{DBPath: dbPath, Logger: log.Noop})
	require.NoError(t, err)
	require.NoError(t, repo.CreateRun(ctx, runFixture("run-1", time.Now().UTC())))
	require.NoError(t, repo.Close())

	reopened, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{DBPath: dbPath, Logger: log.Noop})
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.ID)
}
