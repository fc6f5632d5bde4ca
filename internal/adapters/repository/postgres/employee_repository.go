package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-employee-reconcile/internal/core/employee"
	pgdb "github.com/ogurasousui/codex-employee-reconcile/internal/platform/db/postgres"
)

const uniqueViolationCode = "23505"

const employeeColumns = `id, document, names, surnames, birth_date, address, phone, email,
               position, salary, hire_date, status, education_level, profile, department,
               account_id, created_at, updated_at`

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は社員レコードを新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (document, names, surnames, birth_date, address, phone, email,
                               position, salary, hire_date, status, education_level, profile,
                               department, account_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
        RETURNING `+employeeColumns+`
    `,
		e.Document,
		e.Names,
		e.Surnames,
		nullableDate(e.BirthDate),
		e.Address,
		e.Phone,
		e.Email,
		e.Position,
		e.Salary,
		nullableDate(e.HireDate),
		string(e.Status),
		e.EducationLevel,
		e.Profile,
		e.Department,
		e.AccountID,
		e.CreatedAt,
		e.UpdatedAt,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// Update は社員レコードを全項目置換します。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE employees
           SET names = $1,
               surnames = $2,
               birth_date = $3,
               address = $4,
               phone = $5,
               email = $6,
               position = $7,
               salary = $8,
               hire_date = $9,
               status = $10,
               education_level = $11,
               profile = $12,
               department = $13,
               account_id = $14,
               updated_at = $15
         WHERE id = $16
        RETURNING `+employeeColumns+`
    `,
		e.Names,
		e.Surnames,
		nullableDate(e.BirthDate),
		e.Address,
		e.Phone,
		e.Email,
		e.Position,
		e.Salary,
		nullableDate(e.HireDate),
		string(e.Status),
		e.EducationLevel,
		e.Profile,
		e.Department,
		e.AccountID,
		e.UpdatedAt,
		e.ID,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

// Delete は社員レコードを削除します。
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// FindByID は ID で社員レコードを取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

// FindByDocument は書類番号で社員レコードを取得します。
func (r *EmployeeRepository) FindByDocument(ctx context.Context, document string) (*employee.Employee, error) {
	return r.findOne(ctx, `WHERE document = $1`, document)
}

// FindByAccountID はアカウント ID で社員レコードを取得します。
func (r *EmployeeRepository) FindByAccountID(ctx context.Context, accountID string) (*employee.Employee, error) {
	return r.findOne(ctx, `WHERE account_id = $1`, accountID)
}

func (r *EmployeeRepository) findOne(ctx context.Context, where string, arg any) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         `+where+`
         LIMIT 1
    `, arg)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// List は社員レコードの一覧を取得します。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, string, error) {
	if filter.Limit <= 0 {
		return nil, "", employee.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", employee.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 4)
	conditions := make([]string, 0, 2)

	if filter.Status != nil {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "status = "+placeholder)
		args = append(args, string(*filter.Status))
	}

	if filter.Department != nil {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "department = "+placeholder)
		args = append(args, *filter.Department)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	limitPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, limitWithBuffer)
	offsetPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Offset)

	query := `
        SELECT ` + employeeColumns + `
          FROM employees` + whereClause + `
         ORDER BY created_at DESC, id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0, filter.Limit)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, "", translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translateEmployeePgError(err)
	}

	var nextToken string
	if len(employees) == limitWithBuffer {
		employees = employees[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return employees, nextToken, nil
}

// Count は社員レコードの総数を返します。
func (r *EmployeeRepository) Count(ctx context.Context) (int, error) {
	return r.countWhere(ctx, ``)
}

// CountByStatus は在籍状態ごとの件数を返します。
func (r *EmployeeRepository) CountByStatus(ctx context.Context, status employee.Status) (int, error) {
	return r.countWhere(ctx, ` WHERE status = $1`, string(status))
}

// CountByDepartment は部署ごとの件数を返します。
func (r *EmployeeRepository) CountByDepartment(ctx context.Context, department string) (int, error) {
	return r.countWhere(ctx, ` WHERE department = $1`, department)
}

func (r *EmployeeRepository) countWhere(ctx context.Context, where string, args ...any) (int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var count int
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM employees`+where, args...).Scan(&count); err != nil {
		return 0, translateEmployeePgError(err)
	}
	return count, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id             string
		document       string
		names          string
		surnames       string
		birthDate      sql.NullTime
		address        string
		phone          string
		email          string
		position       string
		salary         float64
		hireDate       sql.NullTime
		status         string
		educationLevel string
		profile        string
		department     string
		accountID      sql.NullString
		createdAt      time.Time
		updatedAt      time.Time
	)

	if err := row.Scan(
		&id,
		&document,
		&names,
		&surnames,
		&birthDate,
		&address,
		&phone,
		&email,
		&position,
		&salary,
		&hireDate,
		&status,
		&educationLevel,
		&profile,
		&department,
		&accountID,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	var accountPtr *string
	if accountID.Valid {
		value := accountID.String
		accountPtr = &value
	}

	return &employee.Employee{
		ID:             id,
		Document:       document,
		Names:          names,
		Surnames:       surnames,
		BirthDate:      dateValue(birthDate),
		Address:        address,
		Phone:          phone,
		Email:          email,
		Position:       position,
		Salary:         salary,
		HireDate:       dateValue(hireDate),
		Status:         employee.Status(status),
		EducationLevel: educationLevel,
		Profile:        profile,
		Department:     department,
		AccountID:      accountPtr,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		switch pgErr.ConstraintName {
		case "employees_account_id_key":
			return employee.ErrAccountAlreadyLinked
		default:
			return employee.ErrDocumentAlreadyExists
		}
	}

	return err
}

func nullableDate(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}

func dateValue(value sql.NullTime) time.Time {
	if !value.Valid {
		return time.Time{}
	}
	t := value.Time.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
