package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-employee-reconcile/internal/core/account"
	pgdb "github.com/ogurasousui/codex-employee-reconcile/internal/platform/db/postgres"
)

// AccountRepository は PostgreSQL を利用したアカウント永続化の実装です。
type AccountRepository struct {
	pool pgdb.Queryer
}

// NewAccountRepository は AccountRepository を生成します。
func NewAccountRepository(pool pgdb.Queryer) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create はアカウントを新規作成します。
func (r *AccountRepository) Create(ctx context.Context, a *account.Account) (*account.Account, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO accounts (id, email, password_hash, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, email, password_hash, created_at, updated_at
    `, a.ID, a.Email, a.PasswordHash, a.CreatedAt, a.UpdatedAt)

	created, err := scanAccount(row)
	if err != nil {
		return nil, translateAccountPgError(err)
	}
	return created, nil
}

// FindByID は ID でアカウントを取得します。
func (r *AccountRepository) FindByID(ctx context.Context, id string) (*account.Account, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, email, password_hash, created_at, updated_at
          FROM accounts
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanAccount(row)
	if err != nil {
		return nil, translateAccountPgError(err)
	}
	return found, nil
}

// FindByEmail はメールアドレスでアカウントを取得します。
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, email, password_hash, created_at, updated_at
          FROM accounts
         WHERE email = $1
         LIMIT 1
    `, email)

	found, err := scanAccount(row)
	if err != nil {
		return nil, translateAccountPgError(err)
	}
	return found, nil
}

func scanAccount(row pgx.Row) (*account.Account, error) {
	var (
		id                   string
		email                string
		passwordHash         string
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&id, &email, &passwordHash, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound
		}
		return nil, err
	}

	return &account.Account{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

func translateAccountPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == uniqueViolationCode {
			return account.ErrEmailAlreadyExists
		}
	}
	return err
}
