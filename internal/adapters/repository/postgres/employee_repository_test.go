package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-employee-reconcile/internal/core/employee"
	pgxmock "github.com/pashagolub/pgxmock/v3"
)

type stubEmployeeRow struct {
	scanFn func(dest ...interface{}) error
}

func (s stubEmployeeRow) Scan(dest ...interface{}) error {
	return s.scanFn(dest...)
}

func TestScanEmployee_Success(t *testing.T) {
	t.Parallel()

	birth := time.Date(1990, 7, 15, 0, 0, 0, 0, time.UTC)
	hired := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	createdAt := time.Now().UTC()
	updatedAt := createdAt.Add(time.Minute)

	row := stubEmployeeRow{scanFn: func(dest ...interface{}) error {
		if len(dest) != 18 {
			return errors.New("unexpected dest length")
		}
		*(dest[0].(*string)) = "emp-1"
		*(dest[1].(*string)) = "900123"
		*(dest[2].(*string)) = "Ana María"
		*(dest[3].(*string)) = "Gómez Pérez"

		birthDest := dest[4].(*sql.NullTime)
		birthDest.Time = birth
		birthDest.Valid = true

		*(dest[5].(*string)) = "Calle 10 #5-23"
		*(dest[6].(*string)) = "3001234567"
		*(dest[7].(*string)) = "anamaria@x.com"
		*(dest[8].(*string)) = "Analyst"
		*(dest[9].(*float64)) = 3500000
		hireDest := dest[10].(*sql.NullTime)
		hireDest.Time = hired
		hireDest.Valid = true

		*(dest[11].(*string)) = string(employee.StatusActive)
		*(dest[12].(*string)) = "Bachelor"
		*(dest[13].(*string)) = "Data analyst"
		*(dest[14].(*string)) = "Technology"

		accountDest := dest[15].(*sql.NullString)
		accountDest.String = "acc-1"
		accountDest.Valid = true

		*(dest[16].(*time.Time)) = createdAt
		*(dest[17].(*time.Time)) = updatedAt
		return nil
	}}

	emp, err := scanEmployee(row)
	if err != nil {
		t.Fatalf("scanEmployee returned error: %v", err)
	}

	if emp.Document != "900123" {
		t.Fatalf("expected document 900123, got %s", emp.Document)
	}
	if !emp.BirthDate.Equal(birth) {
		t.Fatalf("expected birth date, got %v", emp.BirthDate)
	}
	if !emp.HireDate.Equal(hired) {
		t.Fatalf("expected hire date, got %v", emp.HireDate)
	}
	if emp.AccountID == nil || *emp.AccountID != "acc-1" {
		t.Fatalf("expected account id acc-1, got %+v", emp.AccountID)
	}
	if emp.Salary != 3500000 {
		t.Fatalf("expected salary 3500000, got %f", emp.Salary)
	}
}

func TestScanEmployee_NullableFields(t *testing.T) {
	t.Parallel()

	row := stubEmployeeRow{scanFn: func(dest ...interface{}) error {
		*(dest[0].(*string)) = "emp-1"
		*(dest[1].(*string)) = "900123"
		*(dest[11].(*string)) = string(employee.StatusActive)
		*(dest[16].(*time.Time)) = time.Now().UTC()
		*(dest[17].(*time.Time)) = time.Now().UTC()
		return nil
	}}

	emp, err := scanEmployee(row)
	if err != nil {
		t.Fatalf("scanEmployee returned error: %v", err)
	}

	if !emp.BirthDate.IsZero() {
		t.Fatalf("expected zero birth date, got %v", emp.BirthDate)
	}
	if !emp.HireDate.IsZero() {
		t.Fatalf("expected zero hire date, got %v", emp.HireDate)
	}
	if emp.AccountID != nil {
		t.Fatalf("expected nil account id, got %v", *emp.AccountID)
	}
}

func TestScanEmployee_NoRows(t *testing.T) {
	t.Parallel()

	row := stubEmployeeRow{scanFn: func(dest ...interface{}) error {
		return pgx.ErrNoRows
	}}

	_, err := scanEmployee(row)
	if !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestTranslateEmployeePgError(t *testing.T) {
	t.Parallel()

	documentErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "employees_document_key"}
	if !errors.Is(translateEmployeePgError(documentErr), employee.ErrDocumentAlreadyExists) {
		t.Fatalf("expected document violation to map to ErrDocumentAlreadyExists")
	}

	accountErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "employees_account_id_key"}
	if !errors.Is(translateEmployeePgError(accountErr), employee.ErrAccountAlreadyLinked) {
		t.Fatalf("expected account violation to map to ErrAccountAlreadyLinked")
	}

	if !errors.Is(translateEmployeePgError(pgx.ErrNoRows), employee.ErrEmployeeNotFound) {
		t.Fatalf("expected no rows to map to ErrEmployeeNotFound")
	}

	other := errors.New("other")
	if translateEmployeePgError(other) != other {
		t.Fatalf("unexpected translation for generic error")
	}
}

func TestEmployeeRepository_List_WithFilters(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)
	status := employee.StatusActive

	query := regexp.QuoteMeta(`
        SELECT ` + employeeColumns + `
          FROM employees WHERE status = $1
         ORDER BY created_at DESC, id DESC
         LIMIT $2
        OFFSET $3
    `)

	columns := []string{"id", "document", "names", "surnames", "birth_date", "address", "phone", "email",
		"position", "salary", "hire_date", "status", "education_level", "profile", "department",
		"account_id", "created_at", "updated_at"}

	now := time.Now().UTC()
	rows := pgxmock.NewRows(columns).
		AddRow("emp-1", "100", "Ana", "Gómez", nil, "", "", "ana@x.com", "Analyst", 3500000.0, nil, string(status), "", "", "Technology", nil, now, now).
		AddRow("emp-2", "200", "Luis", "Rojas", nil, "", "", "luis@x.com", "Analyst", 2500000.0, nil, string(status), "", "", "Technology", nil, now, now).
		AddRow("emp-3", "300", "Sara", "Mora", nil, "", "", "sara@x.com", "Analyst", 2000000.0, nil, string(status), "", "", "Technology", nil, now, now)

	mock.ExpectQuery(query).
		WithArgs(string(status), 3, 0).
		WillReturnRows(rows)

	employees, nextToken, err := repo.List(context.Background(), employee.ListEmployeesFilter{
		Status: &status,
		Limit:  2,
		Offset: 0,
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if len(employees) != 2 {
		t.Fatalf("expected 2 employees, got %d", len(employees))
	}
	if nextToken != "2" {
		t.Fatalf("expected next token '2', got %s", nextToken)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_CountByStatus(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM employees WHERE status = $1`)).
		WithArgs(string(employee.StatusOnVacation)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountByStatus(context.Background(), employee.StatusOnVacation)
	if err != nil {
		t.Fatalf("CountByStatus returned error: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4, got %d", count)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
