// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
	"strings"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrConflict     = errors.New("conflict")
	ErrInUse        = errors.New("resource still referenced")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// StatusFor maps a domain error onto an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrInUse), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps domain errors to the failure envelope. Internal errors
// never leak their text to the client; fallback is used instead.
func RespondError(w http.ResponseWriter, err error, fallback string) {
	status := StatusFor(err)
	message := fallback
	if status != http.StatusInternalServerError && err != nil {
		message = PublicMessage(err)
	}
	Fail(w, status, message)
}

// PublicMessage returns err's text with a leading sentinel prefix removed,
// so "validation failed: name: required" becomes "name: required".
func PublicMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{ErrNotFound, ErrDuplicate, ErrConflict, ErrInUse, ErrValidation, ErrForbidden, ErrUnauthorized} {
		prefix := sentinel.Error() + ": "
		if strings.HasPrefix(msg, prefix) {
			return strings.TrimPrefix(msg, prefix)
		}
	}
	return msg
}
