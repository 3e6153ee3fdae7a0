package hold

import "errors"

// Hold ドメインのエラー定義
var (
	ErrHoldNotFound        = errors.New("仮押さえが見つかりません")
	ErrHoldAlreadyBooked   = errors.New("仮押さえは既に予約確定されています")
	ErrHoldAlreadyReleased = errors.New("仮押さえは既に解放されています")
	ErrHoldNotActive       = errors.New("仮押さえは有効ではありません")
	ErrEmailMismatch       = errors.New("顧客のメールアドレスが一致しません")
	ErrVenueIDRequired     = errors.New("会場IDは必須です")
	ErrCustomerIDRequired  = errors.New("顧客IDは必須です")
	ErrInvalidNumSeats     = errors.New("仮押さえ座席数は1以上である必要があります")
	ErrBookingCodeRequired = errors.New("予約コードは必須です")

	// ErrBookingCodeMissing は予約確定後に予約コードを取得できない場合の
	// 内部整合性エラー（不変条件の破れを示すため、検証エラーとは区別する）
	ErrBookingCodeMissing = errors.New("予約確定後の予約コードを取得できません")
)
