package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/biletnam/ticket-service/internal/domain/venue"
)

// venueRow はDBの行を表す構造体
type venueRow struct {
	ID             string    `db:"id"`
	Name           string    `db:"name"`
	TotalSeats     int       `db:"total_seats"`
	SeatsCommitted int       `db:"seats_committed"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
	Version        int       `db:"version"`
}

// toEntity はvenueRowをVenueエンティティに変換する
func (r *venueRow) toEntity() *venue.Venue {
	return &venue.Venue{
		ID:             r.ID,
		Name:           r.Name,
		TotalSeats:     r.TotalSeats,
		SeatsCommitted: r.SeatsCommitted,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		Version:        r.Version,
	}
}

// VenueRepository は会場リポジトリのPostgreSQL実装
// 座席台帳の整合性は条件付きUPDATEとCHECK制約で保証される
type VenueRepository struct {
	db *sqlx.DB
}

// NewVenueRepository はVenueRepositoryを作成する
func NewVenueRepository(db *sqlx.DB) *VenueRepository {
	return &VenueRepository{db: db}
}

var _ venue.Repository = (*VenueRepository)(nil)

// Create は新しい会場を作成する
func (r *VenueRepository) Create(ctx context.Context, v *venue.Venue) error {
	query := `
		INSERT INTO venues (name, total_seats, seats_committed, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		v.Name, v.TotalSeats, v.SeatsCommitted, v.CreatedAt, v.UpdatedAt, v.Version,
	).Scan(&v.ID)
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return venue.ErrVenueAlreadyExists
		}
		return fmt.Errorf("会場作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDから会場を取得する
func (r *VenueRepository) GetByID(ctx context.Context, id string) (*venue.Venue, error) {
	query := `SELECT id, name, total_seats, seats_committed, created_at, updated_at, version FROM venues WHERE id = $1`

	var row venueRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, venue.ErrVenueNotFound
		}
		return nil, fmt.Errorf("会場取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// GetByName は名前から会場を取得する
func (r *VenueRepository) GetByName(ctx context.Context, name string) (*venue.Venue, error) {
	query := `SELECT id, name, total_seats, seats_committed, created_at, updated_at, version FROM venues WHERE name = $1`

	var row venueRow
	err := r.db.GetContext(ctx, &row, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, venue.ErrVenueNotFound
		}
		return nil, fmt.Errorf("会場取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// AvailableSeats は会場の空席数を取得する
func (r *VenueRepository) AvailableSeats(ctx context.Context, id string) (int, error) {
	query := `SELECT total_seats - seats_committed FROM venues WHERE id = $1`

	var count int
	err := r.db.GetContext(ctx, &count, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, venue.ErrVenueNotFound
		}
		return 0, fmt.Errorf("空席数取得に失敗しました: %w", err)
	}
	return count, nil
}

// CommitSeats は台帳から座席をアトミックに確保する
// 空席が不足する場合は行を更新せず ErrInsufficientSeats を返す
func (r *VenueRepository) CommitSeats(ctx context.Context, id string, numSeats int) error {
	if numSeats <= 0 {
		return venue.ErrInvalidSeatCount
	}

	query := `
		UPDATE venues
		SET seats_committed = seats_committed + $1,
		    updated_at = NOW(),
		    version = version + 1
		WHERE id = $2
		  AND total_seats - seats_committed >= $1
	`
	result, err := r.db.ExecContext(ctx, query, numSeats, id)
	if err != nil {
		return fmt.Errorf("座席確保に失敗しました: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("座席確保の結果取得に失敗しました: %w", err)
	}
	if rows == 0 {
		// 会場が存在しないのか空席不足なのかを区別する
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return venue.ErrInsufficientSeats
	}
	return nil
}

// ReleaseSeats は確保済みの座席を台帳に戻す
// 確保数を超える解放は行を更新せず ErrReleaseExceedsCommitted を返す
func (r *VenueRepository) ReleaseSeats(ctx context.Context, id string, numSeats int) error {
	if numSeats <= 0 {
		return venue.ErrInvalidSeatCount
	}

	query := `
		UPDATE venues
		SET seats_committed = seats_committed - $1,
		    updated_at = NOW(),
		    version = version + 1
		WHERE id = $2
		  AND seats_committed >= $1
	`
	result, err := r.db.ExecContext(ctx, query, numSeats, id)
	if err != nil {
		return fmt.Errorf("座席解放に失敗しました: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("座席解放の結果取得に失敗しました: %w", err)
	}
	if rows == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return venue.ErrReleaseExceedsCommitted
	}
	return nil
}
