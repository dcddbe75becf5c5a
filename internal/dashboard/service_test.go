package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stokkas/stokkas/internal/inventory"
	"github.com/stokkas/stokkas/internal/orders"
)

var wib = time.FixedZone("WIB", 7*60*60)

func TestWindowsAtUsesLocalCalendar(t *testing.T) {
	// Tuesday 5 March 23:30 UTC is Wednesday 6 March in WIB.
	w := WindowsAt(time.Date(2024, time.March, 5, 23, 30, 0, 0, time.UTC), wib)

	assert.True(t, w.TodayStart.Equal(time.Date(2024, time.March, 6, 0, 0, 0, 0, wib)))
	assert.True(t, w.TodayEnd.Equal(time.Date(2024, time.March, 7, 0, 0, 0, 0, wib)))
	assert.True(t, w.WeekStart.Equal(time.Date(2024, time.March, 3, 0, 0, 0, 0, wib)))
	assert.Equal(t, time.Sunday, w.WeekStart.Weekday())
	assert.True(t, w.MonthStart.Equal(time.Date(2024, time.March, 1, 0, 0, 0, 0, wib)))
}

type fakeCounts struct {
	got Windows
	err error
}

func (f *fakeCounts) Counts(_ context.Context, w Windows) (Counts, error) {
	f.got = w
	return Counts{
		TotalCustomersToday:    2,
		NewCustomersToday:      1,
		TotalTransactionsToday: 3,
		TodayRevenue:           decimal.NewFromInt(70000),
		WeekRevenue:            decimal.NewFromInt(120000),
		MonthRevenue:           decimal.NewFromInt(450000),
	}, f.err
}

type fakeTxs struct{ limit int }

func (f *fakeTxs) Recent(_ context.Context, limit int) ([]orders.Transaction, error) {
	f.limit = limit
	return []orders.Transaction{{ID: 9, CustomerID: 1, Amount: decimal.NewFromInt(20000)}}, nil
}

type fakeMovements struct{}

func (fakeMovements) Recent(context.Context, int) ([]inventory.StockChange, error) {
	return nil, nil
}

func TestSummaryCombinesSources(t *testing.T) {
	counts := &fakeCounts{}
	txs := &fakeTxs{}
	svc := NewService(counts, txs, fakeMovements{}, wib)
	svc.clock = func() time.Time { return time.Date(2024, time.March, 6, 10, 0, 0, 0, wib) }

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RecentLimit, txs.limit)
	assert.Len(t, summary.RecentTransactions, 1)
	assert.NotNil(t, summary.RecentItemMovements)
	assert.Equal(t, int64(3), summary.TotalTransactionsToday)
	assert.True(t, counts.got.WeekStart.Equal(time.Date(2024, time.March, 3, 0, 0, 0, 0, wib)))
}

func TestHandlerSummary(t *testing.T) {
	svc := NewService(&fakeCounts{}, &fakeTxs{}, fakeMovements{}, wib)
	r := chi.NewRouter()
	r.Route("/api/dashboard", NewHandler(nil, svc).MountRoutes)

	res := httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/dashboard/", nil))
	require.Equal(t, http.StatusOK, res.Code)

	var body struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, "70000", body.Data["todayRevenue"])
	assert.EqualValues(t, 2, body.Data["totalCustomersToday"])
	assert.Equal(t, []any{}, body.Data["recentItemMovements"])
}

func TestHandlerSummaryHidesStoreErrors(t *testing.T) {
	svc := NewService(&fakeCounts{err: errors.New("connection refused")}, &fakeTxs{}, fakeMovements{}, wib)
	r := chi.NewRouter()
	r.Route("/api/dashboard", NewHandler(nil, svc).MountRoutes)

	res := httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/dashboard/", nil))
	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Contains(t, res.Body.String(), "Failed to fetch dashboard data")
	assert.NotContains(t, res.Body.String(), "connection refused")
}
