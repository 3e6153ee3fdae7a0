package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client, err := NewClient(&Config{Host: "localhost", Port: "6379"})
	if err != nil {
		t.Skip("Redis not available")
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestAvailabilityCache(t *testing.T) {
	client := setupTestRedis(t)
	cache := NewAvailabilityCache(client)
	ctx := context.Background()
	venueID := "test-venue-123"

	t.Cleanup(func() { cache.Invalidate(ctx, venueID) })

	t.Run("キャッシュミス時はErrCacheMissを返す", func(t *testing.T) {
		_, err := cache.GetAvailableSeats(ctx, venueID)
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("保存した空席数を取得できる", func(t *testing.T) {
		require.NoError(t, cache.SetAvailableSeats(ctx, venueID, 42, 30*time.Second))

		count, err := cache.GetAvailableSeats(ctx, venueID)
		require.NoError(t, err)
		assert.Equal(t, 42, count)
	})

	t.Run("無効化後はキャッシュミスになる", func(t *testing.T) {
		require.NoError(t, cache.SetAvailableSeats(ctx, venueID, 42, 30*time.Second))
		require.NoError(t, cache.Invalidate(ctx, venueID))

		_, err := cache.GetAvailableSeats(ctx, venueID)
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("TTL経過後はキャッシュミスになる", func(t *testing.T) {
		require.NoError(t, cache.SetAvailableSeats(ctx, venueID, 42, 100*time.Millisecond))
		time.Sleep(200 * time.Millisecond)

		_, err := cache.GetAvailableSeats(ctx, venueID)
		assert.ErrorIs(t, err, ErrCacheMiss)
	})
}
