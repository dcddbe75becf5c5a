// Package dashboard summarises today's activity for the landing page.
package dashboard

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/stokkas/stokkas/internal/inventory"
	"github.com/stokkas/stokkas/internal/orders"
	"github.com/stokkas/stokkas/internal/shared"
)

// RecentLimit is how many transactions and movements the dashboard lists.
const RecentLimit = 5

// Windows are the period boundaries the counters are computed over. Every
// window ends at TodayEnd, the next local midnight.
type Windows struct {
	TodayStart time.Time
	TodayEnd   time.Time
	WeekStart  time.Time
	MonthStart time.Time
}

// WindowsAt computes the windows containing now in loc. Weeks start on Sunday.
func WindowsAt(now time.Time, loc *time.Location) Windows {
	today := shared.StartOfDay(now, loc)
	return Windows{
		TodayStart: today,
		TodayEnd:   today.AddDate(0, 0, 1),
		WeekStart:  shared.StartOfWeek(now, loc),
		MonthStart: shared.StartOfMonth(now, loc),
	}
}

// Counts are the aggregate figures of the dashboard.
type Counts struct {
	TotalCustomersToday    int64           `json:"totalCustomersToday"`
	NewCustomersToday      int64           `json:"newCustomersToday"`
	TotalTransactionsToday int64           `json:"totalTransactionsToday"`
	TodayRevenue           decimal.Decimal `json:"todayRevenue"`
	WeekRevenue            decimal.Decimal `json:"weekRevenue"`
	MonthRevenue           decimal.Decimal `json:"monthRevenue"`
}

// Summary is the full dashboard payload.
type Summary struct {
	RecentTransactions  []orders.Transaction    `json:"recentTransactions"`
	RecentItemMovements []inventory.StockChange `json:"recentItemMovements"`
	Counts
}
