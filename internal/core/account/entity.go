package account

import "time"

// Account は認証アカウントです。社員レコードとは独立に存在し、
// 所有リンクは employee 側の AccountID が保持します。
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
