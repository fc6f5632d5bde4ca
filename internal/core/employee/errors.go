package employee

import "errors"

var (
	ErrInvalidID             = errors.New("employee: invalid id")
	ErrInvalidDocument       = errors.New("employee: invalid document")
	ErrInvalidNames          = errors.New("employee: invalid names")
	ErrInvalidSurnames       = errors.New("employee: invalid surnames")
	ErrInvalidEmail          = errors.New("employee: invalid email")
	ErrInvalidPageSize       = errors.New("employee: invalid page size")
	ErrInvalidPageToken      = errors.New("employee: invalid page token")
	ErrEmployeeNotFound      = errors.New("employee: not found")
	ErrDocumentAlreadyExists = errors.New("employee: document already exists")
	ErrAccountAlreadyLinked  = errors.New("employee: account already owns another record")
	ErrOwnershipConflict     = errors.New("employee: document already owned by a different account")
)
