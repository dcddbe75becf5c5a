package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WithTx executes a function within a transaction using the RepeatableRead isolation level.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	return WithTxIsolation(ctx, pool, pgx.RepeatableRead, fn)
}

// WithTxReadCommitted runs fn at ReadCommitted. Units of work that take row
// locks (SELECT ... FOR UPDATE, UPDATE ... SET x = x + $1) use it so a second
// writer waits on the lock and then sees the committed row.
func WithTxReadCommitted(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	return WithTxIsolation(ctx, pool, pgx.ReadCommitted, fn)
}

// WithTxIsolation executes fn within a transaction at the given isolation level.
func WithTxIsolation(ctx context.Context, pool *pgxpool.Pool, iso pgx.TxIsoLevel, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: iso})
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return MapConflict(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return MapConflict(fmt.Errorf("platform/db: commit tx: %w", err))
	}

	return nil
}
