package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockManager_AcquireLock(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	manager := NewLockManager(client)

	t.Run("ロックを取得できる", func(t *testing.T) {
		lock, err := manager.AcquireLock(ctx, "test-key-1", 5*time.Second)
		require.NoError(t, err)
		require.NotNil(t, lock)
		defer lock.Release(ctx)
	})

	t.Run("同じキーのロックは取得できない", func(t *testing.T) {
		lock1, err := manager.AcquireLock(ctx, "test-key-2", 5*time.Second)
		require.NoError(t, err)
		defer lock1.Release(ctx)

		_, err = manager.AcquireLock(ctx, "test-key-2", 5*time.Second)
		assert.ErrorIs(t, err, ErrLockNotAcquired)
	})

	t.Run("解放後は再取得できる", func(t *testing.T) {
		lock1, err := manager.AcquireLock(ctx, "test-key-3", 5*time.Second)
		require.NoError(t, err)
		require.NoError(t, lock1.Release(ctx))

		lock2, err := manager.AcquireLock(ctx, "test-key-3", 5*time.Second)
		require.NoError(t, err)
		defer lock2.Release(ctx)
	})
}

func TestDistributedLock_Release(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	manager := NewLockManager(client)

	t.Run("二重解放はErrLockNotOwnedを返す", func(t *testing.T) {
		lock, err := manager.AcquireLock(ctx, "test-release-1", 5*time.Second)
		require.NoError(t, err)
		require.NoError(t, lock.Release(ctx))

		assert.ErrorIs(t, lock.Release(ctx), ErrLockNotOwned)
	})
}

func TestLockManager_WithLock(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	manager := NewLockManager(client)

	t.Run("関数実行後にロックが解放される", func(t *testing.T) {
		called := false
		err := manager.WithLock(ctx, "test-withlock-1", 5*time.Second, func(ctx context.Context) error {
			called = true
			return nil
		})
		require.NoError(t, err)
		assert.True(t, called)

		// 解放済みなので再取得できる
		lock, err := manager.AcquireLock(ctx, "test-withlock-1", 5*time.Second)
		require.NoError(t, err)
		defer lock.Release(ctx)
	})
}
