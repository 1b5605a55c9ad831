package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/garmin-notion-sync/internal/core/domain"
)

func TestInMemorySyncRunRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemorySyncRunRepository()
	start := time.Date(2024, 1, 7, 6, 0, 0, 0, time.UTC)

	older := domain.NewSyncRun(start)
	newer := domain.NewSyncRun(start.Add(24 * time.Hour))

	t.Run("Create and GetByID", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, older))
		require.NoError(t, repo.Create(ctx, newer))

		got, err := repo.GetByID(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StateLoggedOut, got.State)
	})

	t.Run("Update stores a snapshot", func(t *testing.T) {
		older.StepsCreated = 3
		older.Finish(domain.StateDone, start.Add(time.Minute))
		require.NoError(t, repo.Update(ctx, older))

		older.StepsCreated = 99

		got, err := repo.GetByID(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.StepsCreated)
		assert.Equal(t, domain.StateDone, got.State)
	})

	t.Run("Update of unknown run fails", func(t *testing.T) {
		err := repo.Update(ctx, domain.NewSyncRun(start))
		assert.ErrorIs(t, err, domain.ErrSyncRunNotFound)
	})

	t.Run("GetByID of unknown run fails", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrSyncRunNotFound)
	})

	t.Run("ListRecent is newest first and bounded", func(t *testing.T) {
		runs, err := repo.ListRecent(ctx, 1)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, newer.ID, runs[0].ID)

		all, err := repo.ListRecent(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}
