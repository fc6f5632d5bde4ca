package employee

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ogurasousui/codex-employee-reconcile/internal/core/normalize"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

// Defaults は自己登録時に未提供項目へ適用するセンチネル値と、画面用の選択肢マスタです。
// 通常は config.ReconcileConfig から組み立てます。ゼロ値のフィールドには
// ApplyFallbacks で既定値が入ります。
type Defaults struct {
	Position        string
	Department      string
	Address         string
	Phone           string
	EducationLevel  string
	Profile         string
	Departments     []string
	Positions       []string
	EducationLevels []string
}

// ApplyFallbacks は未設定のセンチネル値を補完した Defaults を返します。
func (d Defaults) ApplyFallbacks() Defaults {
	if d.Position == "" {
		d.Position = "Unassigned"
	}
	if d.Department == "" {
		d.Department = "General"
	}
	if d.Address == "" {
		d.Address = "Address pending"
	}
	if d.Phone == "" {
		d.Phone = "0000000"
	}
	if d.EducationLevel == "" {
		d.EducationLevel = "Not specified"
	}
	if d.Profile == "" {
		d.Profile = "Profile pending"
	}
	return d
}

// Outcome は reconcile の結果種別です。
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeMerged  Outcome = "merged"
)

// RecordInput は取り込み元から届いた生レコードです。Document と Email 以外は
// スパースで、nil のフィールドはその取り込み元が提供しなかったことを表します。
// 一括取り込みは全項目を、自己登録は Names/Surnames のみを供給します。
// 日付・給与・状態は解釈前のセルテキストをそのまま保持します。
type RecordInput struct {
	Document string
	Email    string

	Names          *string
	Surnames       *string
	BirthDate      *string
	Address        *string
	Phone          *string
	Position       *string
	Salary         *string
	HireDate       *string
	Status         *string
	EducationLevel *string
	Profile        *string
	Department     *string
}

// Service は社員レコードの名寄せと管理ユースケースをまとめます。
type Service struct {
	repo     Repository
	clock    Clock
	tx       TransactionManager
	defaults Defaults
	locks    *keyedMutex
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	Reconcile(ctx context.Context, in RecordInput, accountID *string) (*Employee, Outcome, error)
	GetEmployee(ctx context.Context, id string) (*Employee, error)
	GetByDocument(ctx context.Context, document string) (*Employee, error)
	GetByAccount(ctx context.Context, accountID string) (*Employee, error)
	ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error)
	DeleteEmployee(ctx context.Context, id string) error
	DashboardStats(ctx context.Context) (*Stats, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager, defaults Defaults) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{
		repo:     repo,
		clock:    clock,
		tx:       tx,
		defaults: defaults.ApplyFallbacks(),
		locks:    newKeyedMutex(),
	}
}

// Reconcile は生レコードを正準レコードへ名寄せします。document で既存レコードを
// 検索し、存在しなければ新規作成、存在すれば提供された項目を上書きマージします。
// accountID が指定された場合は所有リンクを取得しますが、既に別アカウントが所有する
// レコードには ErrOwnershipConflict を返し、書き換えません。
// 同一 document の reconcile はプロセス内でキー単位に直列化され、別プロセスとの
// 挿入競合は一意制約違反を検出してマージとして一度だけ再試行します。
func (s *Service) Reconcile(ctx context.Context, in RecordInput, accountID *string) (*Employee, Outcome, error) {
	doc := normalize.Text(in.Document)
	if doc == "" {
		return nil, "", fmt.Errorf("document: %w", ErrInvalidDocument)
	}

	email := normalize.EmailLocal(in.Email)
	if email == "" {
		return nil, "", fmt.Errorf("email: %w", ErrInvalidEmail)
	}

	unlock := s.locks.lock(doc)
	defer unlock()

	result, outcome, err := s.reconcileOnce(ctx, doc, email, in, accountID)
	if errors.Is(err, ErrDocumentAlreadyExists) {
		// 挿入競合に敗れた側はレコードが存在する前提でマージし直す。
		result, outcome, err = s.reconcileOnce(ctx, doc, email, in, accountID)
	}
	if err != nil {
		return nil, "", err
	}

	return result, outcome, nil
}

func (s *Service) reconcileOnce(ctx context.Context, doc, email string, in RecordInput, accountID *string) (*Employee, Outcome, error) {
	var (
		result  *Employee
		outcome Outcome
	)

	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByDocument(txCtx, doc)
		if err != nil && !errors.Is(err, ErrEmployeeNotFound) {
			return err
		}

		if existing == nil {
			fresh, err := s.newRecord(doc, email, in, accountID)
			if err != nil {
				return err
			}

			created, err := s.repo.Create(txCtx, fresh)
			if err != nil {
				return err
			}

			result = created
			outcome = OutcomeCreated
			return nil
		}

		if accountID != nil {
			// 所有権は最初の一度しか取得できない。別アカウントが所有済みの
			// document への紐付けは衝突として返し、書き換えない。
			switch {
			case existing.AccountID == nil:
				existing.AccountID = accountID
			case *existing.AccountID != *accountID:
				return fmt.Errorf("document %s: %w", doc, ErrOwnershipConflict)
			}
			// 登録経由のマージは email だけを更新する。
			existing.Email = email
		} else {
			s.overlay(existing, email, in)
		}
		existing.UpdatedAt = s.clock.Now()

		updated, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}

		result = updated
		outcome = OutcomeMerged
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	return result, outcome, nil
}

// newRecord は正規化済みの値とセンチネル既定値から新規レコードを構築します。
func (s *Service) newRecord(doc, email string, in RecordInput, accountID *string) (*Employee, error) {
	names := normalize.Text(stringValue(in.Names))
	if names == "" {
		return nil, fmt.Errorf("names: %w", ErrInvalidNames)
	}

	surnames := normalize.Text(stringValue(in.Surnames))
	if surnames == "" {
		return nil, fmt.Errorf("surnames: %w", ErrInvalidSurnames)
	}

	now := s.clock.Now()

	emp := &Employee{
		Document:       doc,
		Names:          names,
		Surnames:       surnames,
		Email:          email,
		Address:        s.defaults.Address,
		Phone:          s.defaults.Phone,
		Position:       s.defaults.Position,
		Department:     s.defaults.Department,
		EducationLevel: s.defaults.EducationLevel,
		Profile:        s.defaults.Profile,
		Status:         StatusActive,
		HireDate:       now,
		AccountID:      accountID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if in.Address != nil {
		emp.Address = normalize.Text(*in.Address)
	}
	if in.Phone != nil {
		emp.Phone = normalize.Text(*in.Phone)
	}
	if in.Position != nil {
		emp.Position = normalize.Text(*in.Position)
	}
	if in.Department != nil {
		emp.Department = normalize.Text(*in.Department)
	}
	if in.EducationLevel != nil {
		emp.EducationLevel = normalize.Text(*in.EducationLevel)
	}
	if in.Profile != nil {
		emp.Profile = normalize.Text(*in.Profile)
	}
	if in.Salary != nil {
		emp.Salary = normalize.ParseDecimal(*in.Salary, 0)
	}
	if in.BirthDate != nil {
		emp.BirthDate = normalize.ParseDate(*in.BirthDate, time.Time{})
	}
	if in.HireDate != nil {
		emp.HireDate = normalize.ParseDate(*in.HireDate, time.Time{})
	}
	if in.Status != nil {
		emp.Status = ClassifyStatus(*in.Status)
	}

	return emp, nil
}

// overlay は提供された項目だけを既存レコードへ上書きします(後勝ち)。
// 解釈できない日付・給与セルは既存値を保持します。Document と AccountID には触れません。
func (s *Service) overlay(existing *Employee, email string, in RecordInput) {
	existing.Email = email

	if in.Names != nil {
		existing.Names = normalize.Text(*in.Names)
	}
	if in.Surnames != nil {
		existing.Surnames = normalize.Text(*in.Surnames)
	}
	if in.Address != nil {
		existing.Address = normalize.Text(*in.Address)
	}
	if in.Phone != nil {
		existing.Phone = normalize.Text(*in.Phone)
	}
	if in.Position != nil {
		existing.Position = normalize.Text(*in.Position)
	}
	if in.Department != nil {
		existing.Department = normalize.Text(*in.Department)
	}
	if in.EducationLevel != nil {
		existing.EducationLevel = normalize.Text(*in.EducationLevel)
	}
	if in.Profile != nil {
		existing.Profile = normalize.Text(*in.Profile)
	}
	if in.Salary != nil {
		existing.Salary = normalize.ParseDecimal(*in.Salary, existing.Salary)
	}
	if in.BirthDate != nil {
		existing.BirthDate = normalize.ParseDate(*in.BirthDate, existing.BirthDate)
	}
	if in.HireDate != nil {
		existing.HireDate = normalize.ParseDate(*in.HireDate, existing.HireDate)
	}
	if in.Status != nil {
		existing.Status = ClassifyStatus(*in.Status)
	}
}

// GetEmployee は ID で社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, id string) (*Employee, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// GetByDocument は業務キーで社員を取得します。
func (s *Service) GetByDocument(ctx context.Context, document string) (*Employee, error) {
	doc := normalize.Text(document)
	if doc == "" {
		return nil, fmt.Errorf("document: %w", ErrInvalidDocument)
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByDocument(txCtx, doc)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// GetByAccount は認証アカウントが所有する社員レコードを取得します。
func (s *Service) GetByAccount(ctx context.Context, accountID string) (*Employee, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, fmt.Errorf("account id: %w", ErrInvalidID)
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByAccountID(txCtx, accountID)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListEmployeesInput は一覧取得時の入力です。
type ListEmployeesInput struct {
	PageSize   int
	PageToken  string
	Status     *Status
	Department *string
}

// ListEmployeesResult は一覧取得結果を表します。
type ListEmployeesResult struct {
	Employees     []*Employee
	NextPageToken string
}

// ListEmployees は社員の一覧を取得します。
func (s *Service) ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var (
		employees []*Employee
		nextToken string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, token, err := s.repo.List(txCtx, ListEmployeesFilter{
			Status:     in.Status,
			Department: in.Department,
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			return err
		}
		employees = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListEmployeesResult{Employees: employees, NextPageToken: nextToken}, nil
}

// DeleteEmployee は社員を削除します。管理者による明示的な削除のみが想定されています。
func (s *Service) DeleteEmployee(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
}

// Stats はダッシュボード用の集計です。
type Stats struct {
	Total        int
	ByStatus     map[Status]int
	ByDepartment map[string]int
}

// DashboardStats は状態別・部門別の社員数を集計します。部門は設定された
// 選択肢マスタの順に数えます。
func (s *Service) DashboardStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByStatus:     make(map[Status]int),
		ByDepartment: make(map[string]int),
	}

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		total, err := s.repo.Count(txCtx)
		if err != nil {
			return err
		}
		stats.Total = total

		for _, status := range []Status{StatusActive, StatusInactive, StatusOnVacation} {
			count, err := s.repo.CountByStatus(txCtx, status)
			if err != nil {
				return err
			}
			stats.ByStatus[status] = count
		}

		for _, department := range s.defaults.Departments {
			count, err := s.repo.CountByDepartment(txCtx, department)
			if err != nil {
				return err
			}
			stats.ByDepartment[department] = count
		}

		return nil
	}); err != nil {
		return nil, err
	}

	return stats, nil
}

func stringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
