package venue

import "errors"

// Venue ドメインのエラー定義
var (
	ErrVenueNotFound           = errors.New("会場が見つかりません")
	ErrVenueNameRequired       = errors.New("会場名は必須です")
	ErrInvalidTotalSeats       = errors.New("総座席数は1以上である必要があります")
	ErrInvalidSeatsCommitted   = errors.New("確保済み座席数が不正です")
	ErrInvalidSeatCount        = errors.New("座席数は1以上である必要があります")
	ErrNoSeatsAvailable        = errors.New("会場に空席がありません")
	ErrInsufficientSeats       = errors.New("要求された座席数に対して空席が不足しています")
	ErrReleaseExceedsCommitted = errors.New("解放座席数が確保済み座席数を超えています")
	ErrVenueAlreadyExists      = errors.New("会場は既に存在します")
)
