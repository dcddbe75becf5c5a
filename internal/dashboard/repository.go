package dashboard

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository computes dashboard aggregates in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const countsQuery = `SELECT
	(SELECT COUNT(DISTINCT customer_id) FROM transactions WHERE date >= $1 AND date < $2),
	(SELECT COUNT(*) FROM customers WHERE created_at >= $1 AND created_at < $2),
	COUNT(*) FILTER (WHERE t.date >= $1),
	COALESCE(SUM(t.amount) FILTER (WHERE t.date >= $1), 0),
	COALESCE(SUM(t.amount) FILTER (WHERE t.date >= $3), 0),
	COALESCE(SUM(t.amount) FILTER (WHERE t.date >= $4), 0)
FROM transactions t
WHERE t.date >= LEAST($3::timestamptz, $4::timestamptz) AND t.date < $2`

// Counts runs every aggregate in one round trip.
func (r *Repository) Counts(ctx context.Context, w Windows) (Counts, error) {
	var c Counts
	err := r.pool.QueryRow(ctx, countsQuery, w.TodayStart, w.TodayEnd, w.WeekStart, w.MonthStart).Scan(
		&c.TotalCustomersToday,
		&c.NewCustomersToday,
		&c.TotalTransactionsToday,
		&c.TodayRevenue,
		&c.WeekRevenue,
		&c.MonthRevenue,
	)
	return c, err
}
