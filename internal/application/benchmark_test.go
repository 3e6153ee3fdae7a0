package application

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/biletnam/ticket-service/internal/domain/venue"
	"github.com/biletnam/ticket-service/internal/infrastructure/memory"
)

// TestBenchmark_LargeScaleVenue は大規模会場でのパフォーマンスを計測するベンチマークテスト
// 10万席の会場に対する仮押さえ・予約確定のスループットを実証します
func TestBenchmark_LargeScaleVenue(t *testing.T) {
	if testing.Short() {
		t.Skip("大規模ベンチマークテストはshortモードではスキップ")
	}

	const totalSeats = 100000
	ctx := context.Background()

	venueRepo := memory.NewVenueRepository()
	customerRepo := memory.NewCustomerRepository()
	holdRepo := memory.NewHoldRepository()

	v := venue.NewVenue("大規模コンサートホール", totalSeats)
	require.NoError(t, venueRepo.Create(ctx, v))

	svc := NewTicketService(venueRepo, customerRepo, holdRepo, nil, nil, v.ID)

	t.Run("10万席ベンチマーク", func(t *testing.T) {
		// 1. 空席数取得のパフォーマンス
		startCount := time.Now()
		count, err := svc.NumSeatsAvailable(ctx)
		require.NoError(t, err)
		require.Equal(t, totalSeats, count)
		t.Logf("空席数取得: %v", time.Since(startCount))

		// 2. 1000人が同時に仮押さえ（各10席）
		const concurrentUsers = 1000
		const seatsPerHold = 10
		var successCount int32
		var errorCount int32
		var wg sync.WaitGroup

		startHold := time.Now()
		for i := 0; i < concurrentUsers; i++ {
			wg.Add(1)
			go func(userNum int) {
				defer wg.Done()
				_, err := svc.FindAndHoldSeats(ctx, FindAndHoldSeatsInput{
					NumSeats:      seatsPerHold,
					CustomerEmail: fmt.Sprintf("bench-user-%05d@example.com", userNum),
				})
				if err == nil {
					atomic.AddInt32(&successCount, 1)
				} else {
					atomic.AddInt32(&errorCount, 1)
				}
			}(i)
		}
		wg.Wait()

		holdDuration := time.Since(startHold)
		holdRate := float64(successCount) / holdDuration.Seconds()
		t.Logf("並行仮押さえ完了: %v (成功: %d, エラー: %d, %.0f 件/秒)",
			holdDuration, successCount, errorCount, holdRate)

		// 容量十分なので全員成功する
		require.Equal(t, int32(concurrentUsers), successCount)

		count, err = svc.NumSeatsAvailable(ctx)
		require.NoError(t, err)
		require.Equal(t, totalSeats-concurrentUsers*seatsPerHold, count)

		// 3. 競合予約確定（100人が同じ仮押さえを確定）
		h, err := svc.FindAndHoldSeats(ctx, FindAndHoldSeatsInput{
			NumSeats: 2, CustomerEmail: "compete@example.com",
		})
		require.NoError(t, err)

		const competingUsers = 100
		var reserveSuccess int32
		var reserveConflict int32

		startCompete := time.Now()
		var wg2 sync.WaitGroup
		for i := 0; i < competingUsers; i++ {
			wg2.Add(1)
			go func() {
				defer wg2.Done()
				_, err := svc.ReserveSeats(ctx, h.ID, "compete@example.com")
				if err == nil {
					atomic.AddInt32(&reserveSuccess, 1)
				} else {
					atomic.AddInt32(&reserveConflict, 1)
				}
			}()
		}
		wg2.Wait()

		t.Logf("競合予約確定完了: %v (成功: %d, 競合: %d)",
			time.Since(startCompete), reserveSuccess, reserveConflict)

		require.Equal(t, int32(1), reserveSuccess, "競合予約確定では1人だけ成功するべき")
		require.Equal(t, int32(competingUsers-1), reserveConflict)
	})
}
