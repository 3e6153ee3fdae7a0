package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/biletnam/ticket-service/internal/domain/customer"
	"github.com/biletnam/ticket-service/internal/domain/hold"
	"github.com/biletnam/ticket-service/internal/domain/venue"
	redisinfra "github.com/biletnam/ticket-service/internal/infrastructure/redis"
	"github.com/biletnam/ticket-service/internal/pkg/logger"
)

const (
	availabilityCacheTTL = 30 * time.Second
	lockTTL              = 10 * time.Second
)

// TicketService は単一会場の座席仮押さえ・予約確定を提供するアプリケーションサービス
// 容量の正は常に venue.Repository の条件付き更新であり、
// サービス層の空席チェックは分かりやすいエラーを返すための事前確認にすぎない
type TicketService struct {
	venueRepo    venue.Repository
	customerRepo customer.Repository
	holdRepo     hold.Repository
	lockManager  *redisinfra.LockManager
	cache        *redisinfra.AvailabilityCache
	venueID      string
}

// NewTicketService は新しいTicketServiceを作成する
// lockManager / cache は nil でもよい（単一プロセス構成）
func NewTicketService(
	vr venue.Repository,
	cr customer.Repository,
	hr hold.Repository,
	lm *redisinfra.LockManager,
	cache *redisinfra.AvailabilityCache,
	venueID string,
) *TicketService {
	return &TicketService{
		venueRepo:    vr,
		customerRepo: cr,
		holdRepo:     hr,
		lockManager:  lm,
		cache:        cache,
		venueID:      venueID,
	}
}

// NumSeatsAvailable は会場の空席数を返す
func (s *TicketService) NumSeatsAvailable(ctx context.Context) (int, error) {
	if s.cache != nil {
		count, err := s.cache.GetAvailableSeats(ctx, s.venueID)
		if err == nil {
			return count, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("空席数キャッシュ取得に失敗", zap.Error(err))
		}
	}

	count, err := s.venueRepo.AvailableSeats(ctx, s.venueID)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.SetAvailableSeats(ctx, s.venueID, count, availabilityCacheTTL); err != nil {
			logger.Warn("空席数キャッシュ保存に失敗", zap.Error(err))
		}
	}
	return count, nil
}

// FindAndHoldSeatsInput は仮押さえ作成の入力
type FindAndHoldSeatsInput struct {
	NumSeats      int
	CustomerEmail string
}

// FindAndHoldSeats は空席を確認して座席を仮押さえする
// 顧客はメールアドレス（大文字小文字を区別しない）で解決し、未登録なら作成する
func (s *TicketService) FindAndHoldSeats(ctx context.Context, input FindAndHoldSeatsInput) (*hold.Hold, error) {
	if input.NumSeats <= 0 {
		return nil, hold.ErrInvalidNumSeats
	}
	email := customer.NormalizeEmail(input.CustomerEmail)
	if email == "" {
		return nil, customer.ErrEmailRequired
	}

	var result *hold.Hold
	holdSeats := func(ctx context.Context) error {
		v, err := s.venueRepo.GetByID(ctx, s.venueID)
		if err != nil {
			return err
		}

		// 事前確認（台帳への条件付き確保が正であり、ここは早期のエラー報告のため）
		available := v.AvailableSeats()
		if available <= 0 {
			return venue.ErrNoSeatsAvailable
		}
		if available < input.NumSeats {
			return venue.ErrInsufficientSeats
		}

		c, err := s.getOrCreateCustomer(ctx, email)
		if err != nil {
			return err
		}

		// 台帳へのアトミックな確保
		// 事前確認との間に他のリクエストが空席を消費した場合もここで検出される
		if err := s.venueRepo.CommitSeats(ctx, s.venueID, input.NumSeats); err != nil {
			return err
		}

		h := hold.NewHold(s.venueID, c.ID, input.NumSeats)
		if err := h.Validate(); err != nil {
			s.compensateCommit(ctx, input.NumSeats)
			return err
		}
		if err := s.holdRepo.Create(ctx, h); err != nil {
			s.compensateCommit(ctx, input.NumSeats)
			return fmt.Errorf("仮押さえ作成に失敗: %w", err)
		}

		result = h
		return nil
	}

	var err error
	if s.lockManager != nil {
		err = s.lockManager.WithLock(ctx, "venue:"+s.venueID, lockTTL, holdSeats)
	} else {
		err = holdSeats(ctx)
	}
	if err != nil {
		if errors.Is(err, redisinfra.ErrLockNotAcquired) {
			return nil, fmt.Errorf("会場が他のリクエストによって処理中です")
		}
		return nil, err
	}

	s.invalidateCache(ctx)
	logger.Info("仮押さえ作成",
		zap.String("hold_id", result.ID),
		zap.Int("num_seats", result.NumSeats),
	)
	return result, nil
}

// ReserveSeats は有効な仮押さえを予約確定し、予約コードを返す
// 同一の仮押さえに対する並行確定では必ず1つだけが成功する
func (s *TicketService) ReserveSeats(ctx context.Context, holdID, customerEmail string) (string, error) {
	var bookingCode string
	reserve := func(ctx context.Context) error {
		h, err := s.holdRepo.GetByID(ctx, holdID)
		if err != nil {
			return err
		}

		c, err := s.customerRepo.GetByID(ctx, h.CustomerID)
		if err != nil {
			return fmt.Errorf("顧客取得に失敗: %w", err)
		}
		if !c.EmailEquals(customerEmail) {
			return hold.ErrEmailMismatch
		}

		if !h.IsActive() {
			if h.Status == hold.StatusBooked {
				return hold.ErrHoldAlreadyBooked
			}
			return hold.ErrHoldNotActive
		}

		// 予約コードは遷移時に生成され、以後不変
		code := uuid.New().String()
		if err := s.holdRepo.Book(ctx, holdID, code); err != nil {
			return err
		}

		// 遷移後にコードが取得できない場合は不変条件の破れ
		booked, err := s.holdRepo.GetByID(ctx, holdID)
		if err != nil {
			return fmt.Errorf("予約確定後の仮押さえ取得に失敗: %w", err)
		}
		if booked.BookingCode == nil || *booked.BookingCode == "" {
			return hold.ErrBookingCodeMissing
		}

		bookingCode = *booked.BookingCode
		return nil
	}

	var err error
	if s.lockManager != nil {
		err = s.lockManager.WithLock(ctx, "hold:"+holdID, lockTTL, reserve)
	} else {
		err = reserve(ctx)
	}
	if err != nil {
		if errors.Is(err, redisinfra.ErrLockNotAcquired) {
			return "", fmt.Errorf("仮押さえが他のリクエストによって処理中です")
		}
		return "", err
	}

	logger.Info("予約確定",
		zap.String("hold_id", holdID),
		zap.String("booking_code", bookingCode),
	)
	return bookingCode, nil
}

// ReleaseHold は有効な仮押さえを解放し、座席を台帳に戻す
func (s *TicketService) ReleaseHold(ctx context.Context, holdID, customerEmail string) (*hold.Hold, error) {
	var result *hold.Hold
	release := func(ctx context.Context) error {
		h, err := s.holdRepo.GetByID(ctx, holdID)
		if err != nil {
			return err
		}

		c, err := s.customerRepo.GetByID(ctx, h.CustomerID)
		if err != nil {
			return fmt.Errorf("顧客取得に失敗: %w", err)
		}
		if !c.EmailEquals(customerEmail) {
			return hold.ErrEmailMismatch
		}

		// 状態遷移が成功した場合のみ座席を台帳に戻す
		if err := s.holdRepo.Release(ctx, holdID); err != nil {
			return err
		}
		if err := s.venueRepo.ReleaseSeats(ctx, h.VenueID, h.NumSeats); err != nil {
			return fmt.Errorf("座席解放に失敗: %w", err)
		}

		released, err := s.holdRepo.GetByID(ctx, holdID)
		if err != nil {
			return fmt.Errorf("解放後の仮押さえ取得に失敗: %w", err)
		}
		result = released
		return nil
	}

	var err error
	if s.lockManager != nil {
		err = s.lockManager.WithLock(ctx, "hold:"+holdID, lockTTL, release)
	} else {
		err = release(ctx)
	}
	if err != nil {
		if errors.Is(err, redisinfra.ErrLockNotAcquired) {
			return nil, fmt.Errorf("仮押さえが他のリクエストによって処理中です")
		}
		return nil, err
	}

	s.invalidateCache(ctx)
	logger.Info("仮押さえ解放",
		zap.String("hold_id", holdID),
		zap.Int("num_seats", result.NumSeats),
	)
	return result, nil
}

// GetHold はIDから仮押さえを取得する
func (s *TicketService) GetHold(ctx context.Context, id string) (*hold.Hold, error) {
	return s.holdRepo.GetByID(ctx, id)
}

// GetCustomerHolds は顧客のメールアドレスから仮押さえ一覧を取得する
func (s *TicketService) GetCustomerHolds(ctx context.Context, customerEmail string, limit, offset int) ([]*hold.Hold, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	c, err := s.customerRepo.GetByEmail(ctx, customerEmail)
	if err != nil {
		return nil, err
	}
	return s.holdRepo.GetByCustomerID(ctx, c.ID, limit, offset)
}

// getOrCreateCustomer はメールアドレスから顧客を解決し、未登録なら作成する
func (s *TicketService) getOrCreateCustomer(ctx context.Context, email string) (*customer.Customer, error) {
	c, err := s.customerRepo.GetByEmail(ctx, email)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, customer.ErrCustomerNotFound) {
		return nil, fmt.Errorf("顧客取得に失敗: %w", err)
	}

	nc := customer.NewCustomer(email)
	if err := nc.Validate(); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Create(ctx, nc); err != nil {
		// 作成競合時は登録済みの顧客を使う
		if errors.Is(err, customer.ErrCustomerAlreadyExists) {
			return s.customerRepo.GetByEmail(ctx, email)
		}
		return nil, fmt.Errorf("顧客作成に失敗: %w", err)
	}
	return nc, nil
}

// compensateCommit は仮押さえ作成に失敗した際、確保済みの座席を台帳に戻す
func (s *TicketService) compensateCommit(ctx context.Context, numSeats int) {
	if err := s.venueRepo.ReleaseSeats(ctx, s.venueID, numSeats); err != nil {
		logger.Error("確保済み座席の補償解放に失敗",
			zap.String("venue_id", s.venueID),
			zap.Int("num_seats", numSeats),
			zap.Error(err),
		)
	}
}

func (s *TicketService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, s.venueID); err != nil {
		logger.Warn("空席数キャッシュ無効化に失敗", zap.Error(err))
	}
}
