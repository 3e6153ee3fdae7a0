package venue

import "context"

// Repository は会場リポジトリのインターフェース
// CommitSeats / ReleaseSeats は容量台帳のアトミック操作であり、
// 実装は check-then-update を線形化可能にしなければならない
// （読み取り後に別操作で書き込むパターンは座席の二重販売を招くため禁止）
type Repository interface {
	// Create は新しい会場を作成する
	Create(ctx context.Context, v *Venue) error

	// GetByID はIDから会場を取得する
	GetByID(ctx context.Context, id string) (*Venue, error)

	// GetByName は名前から会場を取得する
	GetByName(ctx context.Context, name string) (*Venue, error)

	// AvailableSeats は会場の空席数を取得する
	AvailableSeats(ctx context.Context, id string) (int, error)

	// CommitSeats は空席数を確認し、足りていればアトミックに numSeats 席を確保する
	// 空席が不足している場合は ErrInsufficientSeats を返し、何も変更しない
	CommitSeats(ctx context.Context, id string, numSeats int) error

	// ReleaseSeats は確保済みの座席をアトミックに解放する
	ReleaseSeats(ctx context.Context, id string, numSeats int) error
}
