package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-employee-reconcile/internal/core/account"
	pgxmock "github.com/pashagolub/pgxmock/v3"
)

type stubRow struct {
	scanFn func(dest ...interface{}) error
}

func (s stubRow) Scan(dest ...interface{}) error {
	return s.scanFn(dest...)
}

func TestScanAccount_Success(t *testing.T) {
	t.Parallel()

	createdAt := time.Now().UTC()
	updatedAt := createdAt.Add(time.Minute)

	row := stubRow{scanFn: func(dest ...interface{}) error {
		if len(dest) != 5 {
			return errors.New("unexpected dest length")
		}
		*(dest[0].(*string)) = "acc-1"
		*(dest[1].(*string)) = "ana@x.com"
		*(dest[2].(*string)) = "$2a$10$hash"
		*(dest[3].(*time.Time)) = createdAt
		*(dest[4].(*time.Time)) = updatedAt
		return nil
	}}

	acc, err := scanAccount(row)
	if err != nil {
		t.Fatalf("scanAccount returned error: %v", err)
	}

	if acc.ID != "acc-1" || acc.Email != "ana@x.com" {
		t.Fatalf("unexpected account %+v", acc)
	}
}

func TestScanAccount_NoRows(t *testing.T) {
	t.Parallel()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		return pgx.ErrNoRows
	}}

	_, err := scanAccount(row)
	if !errors.Is(err, account.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestTranslateAccountPgError(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{Code: uniqueViolationCode}
	if !errors.Is(translateAccountPgError(pgErr), account.ErrEmailAlreadyExists) {
		t.Fatalf("expected email exists error mapping")
	}

	otherErr := errors.New("random")
	if translateAccountPgError(otherErr) != otherErr {
		t.Fatalf("unexpected translation for generic error")
	}
}

func TestAccountRepository_FindByEmail(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	query := regexp.QuoteMeta(`
        SELECT id, email, password_hash, created_at, updated_at
          FROM accounts
         WHERE email = $1
         LIMIT 1
    `)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "email", "password_hash", "created_at", "updated_at"}).
		AddRow("acc-1", "ana@x.com", "$2a$10$hash", now, now)

	mock.ExpectQuery(query).WithArgs("ana@x.com").WillReturnRows(rows)

	acc, err := repo.FindByEmail(context.Background(), "ana@x.com")
	if err != nil {
		t.Fatalf("FindByEmail returned error: %v", err)
	}
	if acc.ID != "acc-1" {
		t.Fatalf("expected acc-1, got %s", acc.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
