package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/stokkas/stokkas/internal/platform/db"
	"github.com/stokkas/stokkas/internal/platform/httpx"
)

// Repository persists customers in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const customerColumns = `id, name, field, debt, created_at, updated_at`

func scanCustomer(row pgx.Row) (Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Field, &c.Debt, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, ErrCustomerNotFound
	}
	return c, err
}

// List returns customers ordered by name and the total match count.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Customer, int, error) {
	pattern := db.ContainsPattern(filter.Search)
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers WHERE name ILIKE $1 OR field ILIKE $1`, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT ` + customerColumns + ` FROM customers WHERE name ILIKE $1 OR field ILIKE $1 ORDER BY name`
	args := []any{pattern}
	if filter.Limit > 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, filter.Limit, filter.Offset)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// Get fetches one customer.
func (r *Repository) Get(ctx context.Context, id int64) (Customer, error) {
	return scanCustomer(r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
}

// InsertMany inserts customers with zero debt, skipping existing names.
func (r *Repository) InsertMany(ctx context.Context, rows []NewCustomer) (int64, error) {
	var inserted int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, c := range rows {
			batch.Queue(`INSERT INTO customers (name, field, debt) VALUES ($1, $2, 0) ON CONFLICT (name) DO NOTHING`, c.Name, c.Field)
		}
		results := tx.SendBatch(ctx, batch)
		for range rows {
			tag, err := results.Exec()
			if err != nil {
				_ = results.Close()
				return fmt.Errorf("customers: insert: %w", err)
			}
			inserted += tag.RowsAffected()
		}
		return results.Close()
	})
	return inserted, err
}

// Update applies the patch and bumps updated_at.
func (r *Repository) Update(ctx context.Context, id int64, patch Patch) (Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx, `UPDATE customers
SET name = COALESCE($2, name),
    field = COALESCE($3, field),
    updated_at = NOW()
WHERE id = $1
RETURNING `+customerColumns, id, patch.Name, patch.Field))
	if err != nil && db.IsUniqueViolation(err) {
		return Customer{}, fmt.Errorf("%w: nama customer sudah ada", httpx.ErrDuplicate)
	}
	return c, err
}

// Delete removes a customer without transactions.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrCustomerInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

// IncrementDebt adds amount to the customer's debt through q, which is
// expected to be the caller's open transaction.
func IncrementDebt(ctx context.Context, q db.DBTX, id int64, amount decimal.Decimal) (decimal.Decimal, error) {
	var debt decimal.Decimal
	err := q.QueryRow(ctx, `UPDATE customers SET debt = debt + $2, updated_at = NOW() WHERE id = $1 RETURNING debt`, id, amount).Scan(&debt)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, ErrCustomerNotFound
	}
	return debt, err
}
