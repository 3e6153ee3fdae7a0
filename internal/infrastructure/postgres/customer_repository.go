package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/biletnam/ticket-service/internal/domain/customer"
)

// customerRow はDBの行を表す構造体
type customerRow struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *customerRow) toEntity() *customer.Customer {
	return &customer.Customer{
		ID:        r.ID,
		Email:     r.Email,
		CreatedAt: r.CreatedAt,
	}
}

// CustomerRepository は顧客リポジトリのPostgreSQL実装
// メールアドレスは正規化済み（小文字）で保存され、lower(email) の一意インデックスで
// 大文字小文字を区別しない一意性が保証される
type CustomerRepository struct {
	db *sqlx.DB
}

// NewCustomerRepository はCustomerRepositoryを作成する
func NewCustomerRepository(db *sqlx.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

var _ customer.Repository = (*CustomerRepository)(nil)

// Create は新しい顧客を作成する
// 同一メールアドレス（大文字小文字を区別しない）が既に存在する場合は
// ErrCustomerAlreadyExists を返す
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	query := `
		INSERT INTO customers (email, created_at)
		VALUES ($1, $2)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		customer.NormalizeEmail(c.Email), c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return customer.ErrCustomerAlreadyExists
		}
		return fmt.Errorf("顧客作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDから顧客を取得する
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*customer.Customer, error) {
	query := `SELECT id, email, created_at FROM customers WHERE id = $1`

	var row customerRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customer.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("顧客取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// GetByEmail はメールアドレス（大文字小文字を区別しない）から顧客を取得する
func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	query := `SELECT id, email, created_at FROM customers WHERE lower(email) = $1`

	var row customerRow
	err := r.db.GetContext(ctx, &row, query, customer.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customer.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("顧客取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}
