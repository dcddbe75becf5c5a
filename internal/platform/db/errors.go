package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stokkas/stokkas/internal/platform/httpx"
)

const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// ErrConcurrentUpdate is returned when PostgreSQL aborted the transaction
// because another one touched the same rows. Retrying the request is safe.
var ErrConcurrentUpdate = fmt.Errorf("%w: data sedang diubah oleh permintaan lain, silakan coba lagi", httpx.ErrConflict)

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint failure.
func IsUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// IsForeignKeyViolation reports whether err is a PostgreSQL foreign key failure.
func IsForeignKeyViolation(err error) bool {
	return pgCode(err) == codeForeignKeyViolation
}

// IsSerializationFailure reports whether err is a serialization failure or a
// deadlock, both of which abort the transaction.
func IsSerializationFailure(err error) bool {
	code := pgCode(err)
	return code == codeSerializationFailure || code == codeDeadlockDetected
}

// MapConflict wraps serialization failures so they surface as a conflict
// instead of an internal error. Other errors pass through unchanged.
func MapConflict(err error) error {
	if err == nil || errors.Is(err, ErrConcurrentUpdate) || !IsSerializationFailure(err) {
		return err
	}
	return conflictError{cause: err}
}

// conflictError keeps the driver error reachable through errors.As while its
// text stays the public conflict message.
type conflictError struct {
	cause error
}

func (e conflictError) Error() string {
	return ErrConcurrentUpdate.Error()
}

func (e conflictError) Unwrap() []error {
	return []error{ErrConcurrentUpdate, e.cause}
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
