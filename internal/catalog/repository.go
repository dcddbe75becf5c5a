package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stokkas/stokkas/internal/platform/db"
	"github.com/stokkas/stokkas/internal/platform/httpx"
)

// Repository provides Postgres-backed persistence for catalog items.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const itemColumns = `id, name, unit, price, quantity, created_at`

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.Name, &it.Unit, &it.Price, &it.Quantity, &it.CreatedAt)
	return it, err
}

// ListItems returns items matching the filter and the total match count.
func (r *Repository) ListItems(ctx context.Context, filter ListFilter) ([]Item, int, error) {
	pattern := db.ContainsPattern(filter.Query)
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM items WHERE name ILIKE $1`, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + itemColumns + ` FROM items WHERE name ILIKE $1 ORDER BY name`
	args := []any{pattern}
	if filter.Page.Limit > 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, filter.Page.Limit, filter.Page.Offset())
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, it)
	}
	return items, total, rows.Err()
}

// GetItem fetches an item by id.
func (r *Repository) GetItem(ctx context.Context, id int64) (Item, error) {
	it, err := scanItem(r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, ErrItemNotFound
	}
	return it, err
}

// InsertItems inserts the rows in one batch, skipping names that already exist,
// and reports how many rows were written.
func (r *Repository) InsertItems(ctx context.Context, items []NewItem) (int64, error) {
	var inserted int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, it := range items {
			batch.Queue(`INSERT INTO items (name, unit, price, quantity) VALUES ($1, $2, $3, 0) ON CONFLICT (name) DO NOTHING`, it.Name, it.Unit, it.Price)
		}
		results := tx.SendBatch(ctx, batch)
		for range items {
			tag, err := results.Exec()
			if err != nil {
				_ = results.Close()
				return fmt.Errorf("catalog: insert items: %w", err)
			}
			inserted += tag.RowsAffected()
		}
		return results.Close()
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// UpdateItem writes name, unit and price.
func (r *Repository) UpdateItem(ctx context.Context, id int64, input UpdateInput) (Item, error) {
	it, err := scanItem(r.pool.QueryRow(ctx, `UPDATE items SET name = $2, unit = $3, price = $4 WHERE id = $1 RETURNING `+itemColumns,
		id, input.Name, input.Unit, input.Price))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, ErrItemNotFound
		}
		if db.IsUniqueViolation(err) {
			return Item{}, fmt.Errorf("%w: nama barang sudah ada", httpx.ErrDuplicate)
		}
		return Item{}, err
	}
	return it, nil
}

// DeleteItem removes an item. Ledger rows keep their name snapshot.
func (r *Repository) DeleteItem(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrItemInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}
