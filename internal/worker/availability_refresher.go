package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/biletnam/ticket-service/internal/pkg/logger"
	"github.com/biletnam/ticket-service/internal/pkg/metrics"
)

// AvailabilitySource は会場の空席数を提供するインターフェース
type AvailabilitySource interface {
	AvailableSeats(ctx context.Context, venueID string) (int, error)
}

// AvailabilityCache は空席数キャッシュの書き込み側インターフェース
type AvailabilityCache interface {
	SetAvailableSeats(ctx context.Context, venueID string, count int, ttl time.Duration) error
}

// AvailabilityRefresher は空席数を定期的に台帳から読み直し、
// キャッシュとメトリクスを更新するワーカー
type AvailabilityRefresher struct {
	source   AvailabilitySource
	cache    AvailabilityCache
	venueID  string
	interval time.Duration
	cacheTTL time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewAvailabilityRefresher は新しいリフレッシャーを作成
// cache は nil でもよい（メトリクスの更新のみ行う）
func NewAvailabilityRefresher(
	source AvailabilitySource,
	cache AvailabilityCache,
	venueID string,
	interval time.Duration,
	cacheTTL time.Duration,
) *AvailabilityRefresher {
	return &AvailabilityRefresher{
		source:   source,
		cache:    cache,
		venueID:  venueID,
		interval: interval,
		cacheTTL: cacheTTL,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start はリフレッシャーを開始
func (r *AvailabilityRefresher) Start(ctx context.Context) {
	logger.Info("空席数リフレッシャー開始",
		zap.String("venue_id", r.venueID),
		zap.Duration("interval", r.interval),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("空席数リフレッシャー停止（コンテキストキャンセル）")
			return
		case <-r.stopCh:
			logger.Info("空席数リフレッシャー停止（シグナル受信）")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// Stop はリフレッシャーを停止
func (r *AvailabilityRefresher) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

// refresh は台帳から空席数を読み直す
func (r *AvailabilityRefresher) refresh(ctx context.Context) {
	log := logger.Get()

	count, err := r.source.AvailableSeats(ctx, r.venueID)
	if err != nil {
		log.Error("空席数の取得失敗", zap.Error(err))
		return
	}

	metrics.SetSeatsAvailable(r.venueID, count)

	if r.cache != nil {
		if err := r.cache.SetAvailableSeats(ctx, r.venueID, count, r.cacheTTL); err != nil {
			log.Warn("空席数キャッシュの更新失敗", zap.Error(err))
			return
		}
	}

	log.Debug("空席数を更新", zap.Int("available_seats", count))
}
