package account

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/codex-employee-reconcile/internal/core/normalize"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Service は認証アカウントのユースケースをまとめます。
// 資格情報の保管のみを担い、トークン発行は外部の責務です。
type Service struct {
	repo  Repository
	clock Clock
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, clock: clock}
}

// Create は新しいアカウントを作成します。メールアドレスは社員レコードと
// 同じ規則で正規化され、パスワードは bcrypt でハッシュ化して保存します。
func (s *Service) Create(ctx context.Context, email, password string) (*Account, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	if len(password) < minPasswordLength {
		return nil, ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("account: hash password: %w", err)
	}

	now := s.clock.Now()
	acc := &Account{
		ID:           uuid.NewString(),
		Email:        normalized,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, acc)
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Authenticate はメールアドレスとパスワードを検証し、一致すればアカウントを返します。
// 存在しないアカウントとパスワード不一致は区別せず ErrInvalidCredentials を返します。
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	acc, err := s.repo.FindByEmail(ctx, normalized)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return acc, nil
}

func normalizeEmail(raw string) (string, error) {
	normalized := normalize.EmailLocal(raw)
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}
