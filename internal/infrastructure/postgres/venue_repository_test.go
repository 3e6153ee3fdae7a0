//go:build integration
// +build integration

package postgres

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biletnam/ticket-service/internal/config"
	"github.com/biletnam/ticket-service/internal/domain/venue"
)

func setupTestDB(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()
	cfg := config.Load()

	db, err := NewConnection(&cfg.Database)
	if err != nil {
		t.Skipf("DB接続エラー: %v", err)
	}

	cleanup := func() {
		db.Exec("DELETE FROM holds")
		db.Exec("DELETE FROM customers")
		db.Exec("DELETE FROM venues")
		db.Close()
	}
	return db, cleanup
}

func createTestVenue(t *testing.T, repo *VenueRepository, totalSeats int) *venue.Venue {
	t.Helper()
	v := venue.NewVenue(fmt.Sprintf("テスト会場-%d", totalSeats), totalSeats)
	require.NoError(t, repo.Create(context.Background(), v))
	return v
}

func TestVenueRepository_CommitSeats(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewVenueRepository(db)
	ctx := context.Background()

	t.Run("空席の範囲内で確保できる", func(t *testing.T) {
		v := createTestVenue(t, repo, 10)

		require.NoError(t, repo.CommitSeats(ctx, v.ID, 6))

		count, err := repo.AvailableSeats(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, count)
	})

	t.Run("空席不足はErrInsufficientSeatsを返す", func(t *testing.T) {
		v := createTestVenue(t, repo, 5)

		require.NoError(t, repo.CommitSeats(ctx, v.ID, 3))
		err := repo.CommitSeats(ctx, v.ID, 3)
		assert.ErrorIs(t, err, venue.ErrInsufficientSeats)

		// 失敗した確保は台帳に影響しない
		count, err := repo.AvailableSeats(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("存在しない会場はErrVenueNotFoundを返す", func(t *testing.T) {
		err := repo.CommitSeats(ctx, "00000000-0000-0000-0000-000000000000", 1)
		assert.ErrorIs(t, err, venue.ErrVenueNotFound)
	})
}

func TestVenueRepository_ReleaseSeats(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewVenueRepository(db)
	ctx := context.Background()

	t.Run("確保済みの座席を戻せる", func(t *testing.T) {
		v := createTestVenue(t, repo, 10)
		require.NoError(t, repo.CommitSeats(ctx, v.ID, 7))
		require.NoError(t, repo.ReleaseSeats(ctx, v.ID, 7))

		count, err := repo.AvailableSeats(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, count)
	})

	t.Run("確保数を超える解放は拒否される", func(t *testing.T) {
		v := createTestVenue(t, repo, 10)
		require.NoError(t, repo.CommitSeats(ctx, v.ID, 2))

		err := repo.ReleaseSeats(ctx, v.ID, 3)
		assert.ErrorIs(t, err, venue.ErrReleaseExceedsCommitted)
	})
}

func TestVenueRepository_ConcurrentCommit(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewVenueRepository(db)
	ctx := context.Background()

	const capacity = 50
	v := createTestVenue(t, repo, capacity)

	// 200個の並行確保（各1席）に対して成功はちょうど50
	const workers = 200
	var success int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.CommitSeats(ctx, v.ID, 1); err == nil {
				atomic.AddInt64(&success, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(capacity), success)

	count, err := repo.AvailableSeats(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
