package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/biletnam/ticket-service/internal/domain/hold"
)

// holdRow はDBの行を表す構造体
type holdRow struct {
	ID          string    `db:"id"`
	VenueID     string    `db:"venue_id"`
	CustomerID  string    `db:"customer_id"`
	NumSeats    int       `db:"num_seats"`
	Status      string    `db:"status"`
	BookingCode *string   `db:"booking_code"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *holdRow) toEntity() *hold.Hold {
	return &hold.Hold{
		ID:          r.ID,
		VenueID:     r.VenueID,
		CustomerID:  r.CustomerID,
		NumSeats:    r.NumSeats,
		Status:      hold.Status(r.Status),
		BookingCode: r.BookingCode,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// HoldRepository は仮押さえリポジトリのPostgreSQL実装
// 状態遷移は status を条件に含むUPDATEで行い、並行する遷移では必ず1つだけが成功する
type HoldRepository struct {
	db *sqlx.DB
}

// NewHoldRepository はHoldRepositoryを作成する
func NewHoldRepository(db *sqlx.DB) *HoldRepository {
	return &HoldRepository{db: db}
}

var _ hold.Repository = (*HoldRepository)(nil)

// Create は新しい仮押さえを作成する
func (r *HoldRepository) Create(ctx context.Context, h *hold.Hold) error {
	query := `
		INSERT INTO holds (venue_id, customer_id, num_seats, status, booking_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		h.VenueID, h.CustomerID, h.NumSeats, string(h.Status), h.BookingCode, h.CreatedAt, h.UpdatedAt,
	).Scan(&h.ID)
	if err != nil {
		return fmt.Errorf("仮押さえ作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDから仮押さえを取得する
func (r *HoldRepository) GetByID(ctx context.Context, id string) (*hold.Hold, error) {
	query := `SELECT id, venue_id, customer_id, num_seats, status, booking_code, created_at, updated_at FROM holds WHERE id = $1`

	var row holdRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, hold.ErrHoldNotFound
		}
		return nil, fmt.Errorf("仮押さえ取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// GetByCustomerID は顧客の仮押さえ一覧を作成日時の降順で取得する
func (r *HoldRepository) GetByCustomerID(ctx context.Context, customerID string, limit, offset int) ([]*hold.Hold, error) {
	query := `
		SELECT id, venue_id, customer_id, num_seats, status, booking_code, created_at, updated_at
		FROM holds
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	var rows []holdRow
	err := r.db.SelectContext(ctx, &rows, query, customerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("仮押さえ一覧取得に失敗しました: %w", err)
	}

	holds := make([]*hold.Hold, len(rows))
	for i, row := range rows {
		holds[i] = row.toEntity()
	}
	return holds, nil
}

// Book は有効な仮押さえを予約確定に遷移させ、予約コードを記録する
// 既に確定済み・解放済みの場合は行を更新せず、現在の状態に応じたエラーを返す
func (r *HoldRepository) Book(ctx context.Context, id, bookingCode string) error {
	if bookingCode == "" {
		return hold.ErrBookingCodeRequired
	}

	query := `
		UPDATE holds
		SET status = 'booked',
		    booking_code = $1,
		    updated_at = NOW()
		WHERE id = $2
		  AND status = 'active'
	`
	result, err := r.db.ExecContext(ctx, query, bookingCode, id)
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			// booking_code の一意制約違反。コードはUUIDなので実運用では起きない
			return fmt.Errorf("予約コードが重複しました: %w", err)
		}
		return fmt.Errorf("予約確定に失敗しました: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("予約確定の結果取得に失敗しました: %w", err)
	}
	if rows == 0 {
		h, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if h.Status == hold.StatusBooked {
			return hold.ErrHoldAlreadyBooked
		}
		return hold.ErrHoldNotActive
	}
	return nil
}

// Release は有効な仮押さえを解放済みに遷移させる
func (r *HoldRepository) Release(ctx context.Context, id string) error {
	query := `
		UPDATE holds
		SET status = 'released',
		    updated_at = NOW()
		WHERE id = $1
		  AND status = 'active'
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("仮押さえ解放に失敗しました: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("仮押さえ解放の結果取得に失敗しました: %w", err)
	}
	if rows == 0 {
		h, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		switch h.Status {
		case hold.StatusBooked:
			return hold.ErrHoldAlreadyBooked
		case hold.StatusReleased:
			return hold.ErrHoldAlreadyReleased
		default:
			return hold.ErrHoldNotActive
		}
	}
	return nil
}
