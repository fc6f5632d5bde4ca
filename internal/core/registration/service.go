// Package registration は自己登録フローを担います。アカウント作成と
// 社員レコードの照合・紐付けをひとつのユースケースにまとめます。
package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ogurasousui/codex-employee-reconcile/internal/core/account"
	"github.com/ogurasousui/codex-employee-reconcile/internal/core/employee"
	"github.com/ogurasousui/codex-employee-reconcile/internal/core/normalize"
)

var (
	// ErrInvalidDocument は書類番号が空の場合に返されます。
	ErrInvalidDocument = errors.New("registration: document is required")
	// ErrInvalidNames は名が空の場合に返されます。
	ErrInvalidNames = errors.New("registration: names are required")
	// ErrInvalidSurnames は姓が空の場合に返されます。
	ErrInvalidSurnames = errors.New("registration: surnames are required")
)

// Accounts はアカウント作成の窓口です。
type Accounts interface {
	Create(ctx context.Context, email, password string) (*account.Account, error)
}

// Reconciler は社員レコードの照合を行います。
type Reconciler interface {
	Reconcile(ctx context.Context, in employee.RecordInput, accountID *string) (*employee.Employee, employee.Outcome, error)
}

// Notifier は登録完了の通知を送ります。送信失敗は登録結果に影響しません。
type Notifier interface {
	Welcome(ctx context.Context, email, names string) error
}

// Input は自己登録フォームの入力です。
type Input struct {
	Document string
	Names    string
	Surnames string
	Email    string
	Password string
}

// Result は登録の結果です。Outcome は社員レコードが新規作成されたか
// 既存レコードに紐付いたかを示します。
type Result struct {
	Account  *account.Account
	Employee *employee.Employee
	Outcome  employee.Outcome
}

// LinkError はアカウント作成後の紐付けで失敗したことを示します。
// アカウントは既に存在するため、呼び出し側は ID を使って後続処理できます。
type LinkError struct {
	AccountID string
	Err       error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("registration: link account %s: %v", e.AccountID, e.Err)
}

func (e *LinkError) Unwrap() error {
	return e.Err
}

// Service は自己登録ユースケースを実装します。
type Service struct {
	accounts Accounts
	records  Reconciler
	notifier Notifier
	log      *slog.Logger
}

// NewService は Service を生成します。notifier は nil でも構いません。
func NewService(accounts Accounts, records Reconciler, notifier Notifier, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{accounts: accounts, records: records, notifier: notifier, log: log}
}

// Register はアカウントを作成し、書類番号で社員レコードを照合して紐付けます。
// 同じ書類番号のレコードが既に別アカウントに紐付いている場合、アカウントは
// 作成済みのまま LinkError(employee.ErrOwnershipConflict) を返します。
func (s *Service) Register(ctx context.Context, in Input) (*Result, error) {
	document := normalize.Text(in.Document)
	names := normalize.Text(in.Names)
	surnames := normalize.Text(in.Surnames)

	if document == "" {
		return nil, ErrInvalidDocument
	}
	if names == "" {
		return nil, ErrInvalidNames
	}
	if surnames == "" {
		return nil, ErrInvalidSurnames
	}

	acc, err := s.accounts.Create(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	record, outcome, err := s.records.Reconcile(ctx, employee.RecordInput{
		Document: document,
		Email:    acc.Email,
		Names:    &names,
		Surnames: &surnames,
	}, &acc.ID)
	if err != nil {
		return nil, &LinkError{AccountID: acc.ID, Err: err}
	}

	if s.notifier != nil {
		if err := s.notifier.Welcome(ctx, acc.Email, record.Names); err != nil {
			s.log.WarnContext(ctx, "welcome notification failed",
				slog.String("account_id", acc.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return &Result{Account: acc, Employee: record, Outcome: outcome}, nil
}
