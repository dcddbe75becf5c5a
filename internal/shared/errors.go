package shared

import (
	"errors"
	"fmt"

	"github.com/stokkas/stokkas/internal/platform/httpx"
)

var (
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = fmt.Errorf("%w: username atau password anda salah", httpx.ErrUnauthorized)
	// ErrAuthRequired is returned when a protected route is hit anonymously.
	ErrAuthRequired = fmt.Errorf("%w: login required", httpx.ErrUnauthorized)
)

// IsAuthError reports whether err belongs to the authentication class.
func IsAuthError(err error) bool {
	return errors.Is(err, httpx.ErrUnauthorized) || errors.Is(err, ErrSessionInvalid)
}
