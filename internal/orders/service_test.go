package orders

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stokkas/stokkas/internal/platform/httpx"
	"github.com/stokkas/stokkas/internal/shared"
)

type memoryRepo struct {
	debts        map[int64]decimal.Decimal
	items        map[int64]bool
	transactions []Transaction
	debtErr      error
}

type memoryTx struct {
	debts        map[int64]decimal.Decimal
	items        map[int64]bool
	transactions []Transaction
	nextID       int64
	debtErr      error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		debts: map[int64]decimal.Decimal{1: decimal.NewFromInt(50000)},
		items: map[int64]bool{10: true, 11: true},
	}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memoryTx{debts: map[int64]decimal.Decimal{}, items: r.items, nextID: int64(len(r.transactions)), debtErr: r.debtErr}
	for id, d := range r.debts {
		tx.debts[id] = d
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	r.debts = tx.debts
	r.transactions = append(r.transactions, tx.transactions...)
	return nil
}

func (r *memoryRepo) ListBetween(_ context.Context, rng shared.Range) ([]Transaction, error) {
	var out []Transaction
	for _, t := range r.transactions {
		if rng.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memoryRepo) Recent(_ context.Context, limit int) ([]Transaction, error) {
	var out []Transaction
	for i := len(r.transactions) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.transactions[i])
	}
	return out, nil
}

func (tx *memoryTx) InsertTransaction(_ context.Context, t Transaction) (Transaction, error) {
	if _, ok := tx.debts[t.CustomerID]; !ok {
		return Transaction{}, ErrCustomerNotFound
	}
	tx.nextID++
	t.ID = tx.nextID
	tx.transactions = append(tx.transactions, t)
	return t, nil
}

func (tx *memoryTx) InsertLineItems(_ context.Context, _ int64, lines []OrderLine) error {
	for _, l := range lines {
		if !tx.items[l.ItemID] {
			return ErrItemNotFound
		}
	}
	return nil
}

func (tx *memoryTx) IncrementDebt(_ context.Context, customerID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	if tx.debtErr != nil {
		return decimal.Zero, tx.debtErr
	}
	d, ok := tx.debts[customerID]
	if !ok {
		return decimal.Zero, ErrCustomerNotFound
	}
	d = d.Add(amount)
	tx.debts[customerID] = d
	return d, nil
}

type memoryIdempotency struct {
	keys map[string]bool
}

func (m *memoryIdempotency) CheckAndInsert(ctx context.Context, key, module string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.keys[module+":"+key] {
		return shared.ErrIdempotencyConflict
	}
	m.keys[module+":"+key] = true
	return nil
}

func (m *memoryIdempotency) Delete(ctx context.Context, key, module string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	delete(m.keys, module+":"+key)
	return nil
}

func twentyThousand() []OrderLine {
	return []OrderLine{
		{ItemID: 10, Quantity: 2, Price: decimal.NewFromInt(7500)},
		{ItemID: 11, Quantity: 1, Price: decimal.NewFromInt(5000)},
	}
}

func TestTotal(t *testing.T) {
	assert.True(t, decimal.NewFromInt(20000).Equal(Total(twentyThousand())))
	assert.True(t, Total(nil).IsZero())
	half := []OrderLine{{ItemID: 1, Quantity: 3, Price: decimal.RequireFromString("0.5")}}
	assert.Equal(t, "1.5", Total(half).String())
}

func TestUnpaidOrderAccruesDebtAndPaidDoesNot(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()

	created, err := svc.PlaceOrder(ctx, PlaceOrderInput{CustomerID: 1, TransactionType: "non tunai", Lines: twentyThousand()})
	require.NoError(t, err)
	assert.False(t, created.IsPaid)
	assert.True(t, created.Amount.Equal(decimal.NewFromInt(20000)))
	assert.Len(t, created.Items, 2)
	assert.True(t, repo.debts[1].Equal(decimal.NewFromInt(70000)), repo.debts[1].String())

	created, err = svc.PlaceOrder(ctx, PlaceOrderInput{CustomerID: 1, TransactionType: "tunai", Lines: twentyThousand()})
	require.NoError(t, err)
	assert.True(t, created.IsPaid)
	assert.True(t, repo.debts[1].Equal(decimal.NewFromInt(70000)), repo.debts[1].String())
	assert.Len(t, repo.transactions, 2)
}

func TestPlaceOrderValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil, nil)
	ctx := context.Background()

	_, err := svc.PlaceOrder(ctx, PlaceOrderInput{TransactionType: "tunai", Lines: twentyThousand()})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.PlaceOrder(ctx, PlaceOrderInput{CustomerID: 1, TransactionType: "tunai"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.PlaceOrder(ctx, PlaceOrderInput{CustomerID: 1, Lines: []OrderLine{{ItemID: 10, Quantity: 0, Price: decimal.NewFromInt(1)}}})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUnknownItemRollsBackEverything(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil)

	lines := append(twentyThousand(), OrderLine{ItemID: 99, Quantity: 1, Price: decimal.NewFromInt(1)})
	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{CustomerID: 1, Lines: lines})
	require.ErrorIs(t, err, httpx.ErrNotFound)
	assert.Empty(t, repo.transactions)
	assert.True(t, repo.debts[1].Equal(decimal.NewFromInt(50000)))

	_, err = svc.PlaceOrder(context.Background(), PlaceOrderInput{CustomerID: 2, Lines: twentyThousand()})
	require.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestIdempotencyKeyRejectsReplay(t *testing.T) {
	repo := newMemoryRepo()
	idem := &memoryIdempotency{keys: map[string]bool{}}
	svc := NewService(repo, idem, nil, nil)
	ctx := context.Background()

	in := PlaceOrderInput{CustomerID: 1, Lines: twentyThousand(), IdempotencyKey: "abc"}
	_, err := svc.PlaceOrder(ctx, in)
	require.NoError(t, err)
	_, err = svc.PlaceOrder(ctx, in)
	require.ErrorIs(t, err, httpx.ErrDuplicate)
	assert.True(t, repo.debts[1].Equal(decimal.NewFromInt(70000)))

	failing := PlaceOrderInput{CustomerID: 2, Lines: twentyThousand(), IdempotencyKey: "retry-me"}
	_, err = svc.PlaceOrder(ctx, failing)
	require.Error(t, err)
	assert.False(t, idem.keys["orders:retry-me"])
}

func TestHandlerPlaceOrder(t *testing.T) {
	repo := newMemoryRepo()
	idem := &memoryIdempotency{keys: map[string]bool{}}
	h := NewHandler(nil, NewService(repo, idem, nil, nil), nil)
	r := chi.NewRouter()
	r.Route("/api/transaksi", h.MountRoutes)

	body := `{"customerId":"1","transactionType":"non tunai","orderItems":[{"itemId":10,"quantity":2,"harga":7500},{"itemId":"11","quantity":"1","harga":"5000"}]}`
	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/transaksi/buat-pesanan", strings.NewReader(body))
		req.Header.Set(IdempotencyHeader, "k-1")
		res := httptest.NewRecorder()
		r.ServeHTTP(res, req)
		return res
	}

	res := send()
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	assert.True(t, repo.debts[1].Equal(decimal.NewFromInt(70000)))

	res = send()
	require.Equal(t, http.StatusConflict, res.Code)

	res = httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/api/transaksi/buat-pesanan", strings.NewReader(`{"customerId":1,"orderItems":[]}`)))
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestConcurrentDebtUpdateIsConflictAndReleasesKey(t *testing.T) {
	repo := newMemoryRepo()
	repo.debtErr = &pgconn.PgError{Code: "40001", Message: "could not serialize access due to concurrent update"}
	idem := &memoryIdempotency{keys: map[string]bool{}}
	h := NewHandler(nil, NewService(repo, idem, nil, nil), nil)
	r := chi.NewRouter()
	r.Route("/api/transaksi", h.MountRoutes)

	req := httptest.NewRequest(http.MethodPost, "/api/transaksi/buat-pesanan",
		strings.NewReader(`{"customerId":1,"transactionType":"non tunai","orderItems":[{"itemId":10,"quantity":2,"harga":7500}]}`))
	req.Header.Set(IdempotencyHeader, "k-2")
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)

	require.Equal(t, http.StatusConflict, res.Code, res.Body.String())
	assert.NotContains(t, res.Body.String(), "serialize")
	assert.Empty(t, repo.transactions)
	assert.True(t, repo.debts[1].Equal(decimal.NewFromInt(50000)))
	assert.False(t, idem.keys["orders:k-2"])
}

// cancellingRepo cancels the request context mid-transaction, the way a
// request timeout does, and fails the unit of work.
type cancellingRepo struct {
	*memoryRepo
	cancel context.CancelFunc
}

func (r *cancellingRepo) WithTx(ctx context.Context, _ func(context.Context, TxRepository) error) error {
	r.cancel()
	return ctx.Err()
}

func TestFailedOrderReleasesKeyAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo := &cancellingRepo{memoryRepo: newMemoryRepo(), cancel: cancel}
	idem := &memoryIdempotency{keys: map[string]bool{}}
	svc := NewService(repo, idem, nil, nil)

	_, err := svc.PlaceOrder(ctx, PlaceOrderInput{CustomerID: 1, Lines: twentyThousand(), IdempotencyKey: "slow"})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, idem.keys["orders:slow"])

	_, err = NewService(newMemoryRepo(), idem, nil, nil).PlaceOrder(context.Background(),
		PlaceOrderInput{CustomerID: 1, Lines: twentyThousand(), IdempotencyKey: "slow"})
	require.NoError(t, err)
}
