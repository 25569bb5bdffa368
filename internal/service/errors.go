package service

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const uniqueViolationCode = "23505"

// ErrValidation matches every input validation failure.
var ErrValidation = errors.New("validation failed")

// ValidationError carries a user-facing message and matches ErrValidation.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(msg string) *ValidationError {
	return &ValidationError{msg: msg}
}

var (
	ErrUsernameTooShort  = invalid("username must be at least 3 characters long")
	ErrUsernameTooLong   = invalid("username must be at most 50 characters long")
	ErrUsernameHasAt     = invalid("username must not contain @")
	ErrInvalidEmail      = invalid("a valid email address is required")
	ErrPasswordTooShort  = invalid("password must be at least 8 characters long")
	ErrPasswordTooLong   = invalid("password must be at most 72 bytes long")
	ErrMissingFields     = invalid("required fields are missing")
	ErrInvalidRole       = invalid("role must be one of: user, admin")
	ErrResetTokenInvalid = invalid("invalid or expired reset token")

	ErrUserExists         = errors.New("username or email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordMismatch   = errors.New("current password is incorrect")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("forbidden")
	ErrCannotModifySelf   = fmt.Errorf("%w: admins cannot change or delete their own account", ErrForbidden)
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isUniqueViolation recognises unique constraint failures from either
// supported driver.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolationCode
	}
	return false
}
