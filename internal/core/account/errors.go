package account

import "errors"

var (
	ErrInvalidEmail       = errors.New("account: invalid email")
	ErrInvalidPassword    = errors.New("account: password must be at least 6 characters")
	ErrAccountNotFound    = errors.New("account: not found")
	ErrEmailAlreadyExists = errors.New("account: email already exists")
	ErrInvalidCredentials = errors.New("account: invalid credentials")
)
