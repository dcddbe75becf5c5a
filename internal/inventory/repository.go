package inventory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stokkas/stokkas/internal/platform/db"
)

// Repository persists stock data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by service.
type TxRepository interface {
	GetItemForUpdate(ctx context.Context, id int64) (Item, error)
	UpdateQuantity(ctx context.Context, id, quantity int64) (Item, error)
	InsertStockChange(ctx context.Context, change StockChange) (int64, error)
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a read-committed transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTxReadCommitted(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

const itemColumns = `id, name, unit, price, quantity, created_at`

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.Name, &it.Unit, &it.Price, &it.Quantity, &it.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, ErrItemNotFound
	}
	return it, err
}

func (r *txRepo) GetItemForUpdate(ctx context.Context, id int64) (Item, error) {
	return scanItem(r.tx.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, id))
}

func (r *txRepo) UpdateQuantity(ctx context.Context, id, quantity int64) (Item, error) {
	return scanItem(r.tx.QueryRow(ctx, `UPDATE items SET quantity = $2 WHERE id = $1 RETURNING `+itemColumns, id, quantity))
}

func (r *txRepo) InsertStockChange(ctx context.Context, change StockChange) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO stock_changes (item_id, item_name, quantity, action, changed_at)
VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		change.ItemID, change.ItemName, change.Quantity, string(change.Action), change.ChangedAt).Scan(&id)
	return id, err
}

// ListHistory returns ledger entries inside the range, optionally filtered by
// action, in occurrence order.
func (r *Repository) ListHistory(ctx context.Context, filter HistoryFilter) ([]StockChange, error) {
	query := `SELECT id, item_id, item_name, quantity, action, changed_at
FROM stock_changes
WHERE changed_at >= $1 AND changed_at < $2`
	args := []any{filter.Range.From, filter.Range.To}
	if filter.Action != "" {
		query += ` AND action = $3`
		args = append(args, string(filter.Action))
	}
	query += ` ORDER BY changed_at, id`
	return r.queryChanges(ctx, query, args...)
}

// RecentChanges returns the latest ledger entries, newest first.
func (r *Repository) RecentChanges(ctx context.Context, limit int) ([]StockChange, error) {
	return r.queryChanges(ctx, `SELECT id, item_id, item_name, quantity, action, changed_at
FROM stock_changes ORDER BY changed_at DESC, id DESC LIMIT $1`, limit)
}

func (r *Repository) queryChanges(ctx context.Context, query string, args ...any) ([]StockChange, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	changes := make([]StockChange, 0)
	for rows.Next() {
		var c StockChange
		var action string
		if err := rows.Scan(&c.ID, &c.ItemID, &c.ItemName, &c.Quantity, &action, &c.ChangedAt); err != nil {
			return nil, err
		}
		c.Action = Direction(action)
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
