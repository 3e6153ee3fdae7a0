package customer

import "context"

// Repository は顧客リポジトリのインターフェース
type Repository interface {
	// Create は新しい顧客を作成する
	// 同じメールアドレス（大文字小文字を区別しない）の顧客が存在する場合は
	// ErrCustomerAlreadyExists を返す
	Create(ctx context.Context, c *Customer) error

	// GetByID はIDから顧客を取得する
	GetByID(ctx context.Context, id string) (*Customer, error)

	// GetByEmail はメールアドレスから顧客を取得する（大文字小文字を区別しない）
	GetByEmail(ctx context.Context, email string) (*Customer, error)
}
