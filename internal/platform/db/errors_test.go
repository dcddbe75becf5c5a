package db

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/stokkas/stokkas/internal/platform/httpx"
)

func TestMapConflictWrapsSerializationFailures(t *testing.T) {
	for _, code := range []string{codeSerializationFailure, codeDeadlockDetected} {
		pgErr := &pgconn.PgError{Code: code, Message: "could not serialize access due to concurrent update"}
		err := MapConflict(fmt.Errorf("inventory: lock item: %w", pgErr))

		require.ErrorIs(t, err, ErrConcurrentUpdate)
		require.ErrorIs(t, err, httpx.ErrConflict)
		require.Equal(t, http.StatusConflict, httpx.StatusFor(err))
		require.NotContains(t, httpx.PublicMessage(err), "serialize")

		var target *pgconn.PgError
		require.True(t, errors.As(err, &target))
		require.Equal(t, code, target.Code)
		require.Equal(t, err, MapConflict(err))
	}
}

func TestMapConflictPassesOtherErrorsThrough(t *testing.T) {
	require.NoError(t, MapConflict(nil))

	plain := errors.New("connection reset")
	require.Same(t, plain, MapConflict(plain))

	unique := &pgconn.PgError{Code: codeUniqueViolation}
	require.Same(t, unique, MapConflict(unique))
	require.True(t, IsUniqueViolation(unique))
	require.False(t, IsSerializationFailure(unique))
}
