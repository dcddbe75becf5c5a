package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stokkas/stokkas/internal/platform/db"
	"github.com/stokkas/stokkas/internal/platform/httpx"
)

// ErrAdminNotFound is returned when the id does not match any account.
var ErrAdminNotFound = fmt.Errorf("%w: user tidak ditemukan", httpx.ErrNotFound)

// Repository provides Postgres-backed persistence for admin accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListUsers returns every account ordered by id.
func (r *Repository) ListUsers(ctx context.Context) ([]Admin, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, username, created_at, updated_at FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Admin
	for rows.Next() {
		var a Admin
		if err := rows.Scan(&a.ID, &a.Username, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetUser fetches one account.
func (r *Repository) GetUser(ctx context.Context, id int64) (Admin, error) {
	var a Admin
	err := r.pool.QueryRow(ctx, `SELECT id, username, created_at, updated_at FROM users WHERE id = $1`, id).
		Scan(&a.ID, &a.Username, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Admin{}, ErrAdminNotFound
	}
	return a, err
}

// UpdateUser renames the account and, when a hash is given, replaces the password.
func (r *Repository) UpdateUser(ctx context.Context, id int64, input UpdateInput) (Admin, error) {
	var a Admin
	err := r.pool.QueryRow(ctx, `UPDATE users
SET username = $2,
    password_hash = COALESCE(NULLIF($3, ''), password_hash),
    updated_at = NOW()
WHERE id = $1
RETURNING id, username, created_at, updated_at`, id, input.Username, input.PasswordHash).
		Scan(&a.ID, &a.Username, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Admin{}, ErrAdminNotFound
		}
		if db.IsUniqueViolation(err) {
			return Admin{}, fmt.Errorf("%w: username telah digunakan", httpx.ErrDuplicate)
		}
		return Admin{}, err
	}
	return a, nil
}

// DeleteUser removes the account and its session audit rows.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAdminNotFound
	}
	return nil
}
