package employee

import "context"

// Repository は社員レコード永続化の抽象です。
// Create は document 重複時に ErrDocumentAlreadyExists を、
// account_id 重複時に ErrAccountAlreadyLinked を返します。
// Update は ID をキーとした全項目置換です。
type Repository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	Update(ctx context.Context, employee *Employee) (*Employee, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByDocument(ctx context.Context, document string) (*Employee, error)
	FindByAccountID(ctx context.Context, accountID string) (*Employee, error)
	List(ctx context.Context, filter ListEmployeesFilter) ([]*Employee, string, error)
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status Status) (int, error)
	CountByDepartment(ctx context.Context, department string) (int, error)
}

// ListEmployeesFilter は一覧取得用フィルタです。
type ListEmployeesFilter struct {
	Status     *Status
	Department *string
	Limit      int
	Offset     int
}
