package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/stokkas/stokkas/internal/customers"
	"github.com/stokkas/stokkas/internal/platform/db"
	"github.com/stokkas/stokkas/internal/shared"
)

// Repository persists transactions in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the writes of order placement.
type TxRepository interface {
	InsertTransaction(ctx context.Context, tx Transaction) (Transaction, error)
	InsertLineItems(ctx context.Context, txID int64, lines []OrderLine) error
	IncrementDebt(ctx context.Context, customerID int64, amount decimal.Decimal) (decimal.Decimal, error)
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

func (r *txRepo) InsertTransaction(ctx context.Context, t Transaction) (Transaction, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO transactions (customer_id, date, amount, is_paid) VALUES ($1, $2, $3, $4) RETURNING id, date`,
		t.CustomerID, t.Date, t.Amount, t.IsPaid).Scan(&t.ID, &t.Date)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return Transaction{}, ErrCustomerNotFound
		}
		return Transaction{}, err
	}
	return t, nil
}

func (r *txRepo) InsertLineItems(ctx context.Context, txID int64, lines []OrderLine) error {
	rows := make([][]any, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []any{txID, l.ItemID, l.Quantity})
	}
	_, err := r.tx.CopyFrom(ctx,
		pgx.Identifier{"transaction_items"},
		[]string{"transaction_id", "item_id", "quantity"},
		pgx.CopyFromRows(rows),
	)
	if db.IsForeignKeyViolation(err) {
		return ErrItemNotFound
	}
	return err
}

func (r *txRepo) IncrementDebt(ctx context.Context, customerID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	debt, err := customers.IncrementDebt(ctx, r.tx, customerID, amount)
	if errors.Is(err, customers.ErrCustomerNotFound) {
		return decimal.Zero, ErrCustomerNotFound
	}
	return debt, err
}

const transactionSelect = `SELECT t.id, t.customer_id, t.date, t.amount, t.is_paid,
       c.id, c.name, c.field, c.debt
FROM transactions t
JOIN customers c ON c.id = t.customer_id`

// ListBetween returns transactions dated inside the range with customer and
// line items joined, oldest first.
func (r *Repository) ListBetween(ctx context.Context, rng shared.Range) ([]Transaction, error) {
	return r.listWithItems(ctx, transactionSelect+` WHERE t.date >= $1 AND t.date < $2 ORDER BY t.date, t.id`, rng.From, rng.To)
}

// Recent returns the newest transactions, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Transaction, error) {
	return r.listWithItems(ctx, transactionSelect+` ORDER BY t.date DESC, t.id DESC LIMIT $1`, limit)
}

func (r *Repository) listWithItems(ctx context.Context, query string, args ...any) ([]Transaction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Transaction, 0)
	index := make(map[int64]int)
	ids := make([]int64, 0)
	for rows.Next() {
		var t Transaction
		c := &CustomerRef{}
		if err := rows.Scan(&t.ID, &t.CustomerID, &t.Date, &t.Amount, &t.IsPaid, &c.ID, &c.Name, &c.Field, &c.Debt); err != nil {
			return nil, err
		}
		t.Customer = c
		t.Items = []LineItem{}
		index[t.ID] = len(out)
		ids = append(ids, t.ID)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	itemRows, err := r.pool.Query(ctx, `SELECT ti.id, ti.transaction_id, ti.item_id, ti.quantity,
       i.id, i.name, i.unit, i.price
FROM transaction_items ti
JOIN items i ON i.id = ti.item_id
WHERE ti.transaction_id = ANY($1)
ORDER BY ti.transaction_id, ti.id`, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var li LineItem
		ref := &ItemRef{}
		if err := itemRows.Scan(&li.ID, &li.TransactionID, &li.ItemID, &li.Quantity, &ref.ID, &ref.Name, &ref.Unit, &ref.Price); err != nil {
			return nil, err
		}
		li.Item = ref
		pos := index[li.TransactionID]
		out[pos].Items = append(out[pos].Items, li)
	}
	return out, itemRows.Err()
}
