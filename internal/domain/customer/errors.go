package customer

import "errors"

// Customer ドメインのエラー定義
var (
	ErrCustomerNotFound      = errors.New("顧客が見つかりません")
	ErrEmailRequired         = errors.New("メールアドレスは必須です")
	ErrInvalidEmail          = errors.New("メールアドレスの形式が不正です")
	ErrCustomerAlreadyExists = errors.New("同じメールアドレスの顧客が既に存在します")
)
