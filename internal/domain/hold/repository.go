package hold

import "context"

// Repository は仮押さえリポジトリのインターフェース
// Book / Release は状態遷移の条件付き更新であり、同一の仮押さえに対する
// 並行呼び出しでは必ず1つだけが成功しなければならない
type Repository interface {
	// Create は新しい仮押さえを作成する
	Create(ctx context.Context, h *Hold) error

	// GetByID はIDから仮押さえを取得する
	GetByID(ctx context.Context, id string) (*Hold, error)

	// GetByCustomerID は顧客IDから仮押さえ一覧を取得する
	GetByCustomerID(ctx context.Context, customerID string, limit, offset int) ([]*Hold, error)

	// Book は active な仮押さえを booked に遷移させ、予約コードを設定する
	// active でない場合は状態に応じて ErrHoldAlreadyBooked / ErrHoldNotActive を返す
	Book(ctx context.Context, id, bookingCode string) error

	// Release は active な仮押さえを released に遷移させる
	Release(ctx context.Context, id string) error
}
