package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// AvailabilityCache は会場の空席数キャッシュを管理する
// キャッシュは読み取り高速化のためだけに使い、容量台帳の正は常にストア側にある
type AvailabilityCache struct {
	client *redis.Client
}

// NewAvailabilityCache は新しいAvailabilityCacheインスタンスを作成する
func NewAvailabilityCache(client *redis.Client) *AvailabilityCache {
	return &AvailabilityCache{client: client}
}

// GetAvailableSeats は会場の空席数をキャッシュから取得する
func (c *AvailabilityCache) GetAvailableSeats(ctx context.Context, venueID string) (int, error) {
	val, err := c.client.Get(ctx, c.availableSeatsKey(venueID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// SetAvailableSeats は会場の空席数をキャッシュに保存する
func (c *AvailabilityCache) SetAvailableSeats(ctx context.Context, venueID string, count int, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.availableSeatsKey(venueID), count, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は会場のキャッシュを無効化する
// 座席数を変更する操作の後に必ず呼び、古い空席数が観測されないようにする
func (c *AvailabilityCache) Invalidate(ctx context.Context, venueID string) error {
	if err := c.client.Del(ctx, c.availableSeatsKey(venueID)).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *AvailabilityCache) availableSeatsKey(venueID string) string {
	return fmt.Sprintf("venue:available:%s", venueID)
}
