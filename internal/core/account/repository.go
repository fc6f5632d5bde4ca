package account

import "context"

// Repository は認証アカウント永続化の抽象です。
// Create はメールアドレス重複時に ErrEmailAlreadyExists を返します。
type Repository interface {
	Create(ctx context.Context, account *Account) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
}
