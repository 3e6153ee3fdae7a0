package customer

import (
	"strings"
	"time"
)

// Customer は顧客エンティティを表す
// メールアドレスを大文字小文字を区別しない一意キーとして扱う
type Customer struct {
	ID        string
	Email     string // 正規化済み（小文字）で保持する
	CreatedAt time.Time
}

// NewCustomer は新しい顧客を作成する
func NewCustomer(email string) *Customer {
	return &Customer{
		Email:     NormalizeEmail(email),
		CreatedAt: time.Now(),
	}
}

// NormalizeEmail はメールアドレスを比較用に正規化する
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailEquals は正規化したうえでメールアドレスを比較する
func (c *Customer) EmailEquals(email string) bool {
	return c.Email == NormalizeEmail(email)
}

// Validate は顧客の検証を行う
func (c *Customer) Validate() error {
	if c.Email == "" {
		return ErrEmailRequired
	}
	if !strings.Contains(c.Email, "@") {
		return ErrInvalidEmail
	}
	return nil
}
