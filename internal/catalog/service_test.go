package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stokkas/stokkas/internal/platform/httpx"
	"github.com/stokkas/stokkas/internal/shared"
)

type memoryRepo struct {
	items  []Item
	nextID int64
}

func (m *memoryRepo) ListItems(_ context.Context, filter ListFilter) ([]Item, int, error) {
	var out []Item
	for _, it := range m.items {
		if strings.Contains(strings.ToLower(it.Name), strings.ToLower(filter.Query)) {
			out = append(out, it)
		}
	}
	return out, len(out), nil
}

func (m *memoryRepo) GetItem(_ context.Context, id int64) (Item, error) {
	for _, it := range m.items {
		if it.ID == id {
			return it, nil
		}
	}
	return Item{}, ErrItemNotFound
}

func (m *memoryRepo) InsertItems(_ context.Context, items []NewItem) (int64, error) {
	var inserted int64
	for _, n := range items {
		exists := false
		for _, it := range m.items {
			if it.Name == n.Name {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		m.nextID++
		m.items = append(m.items, Item{ID: m.nextID, Name: n.Name, Unit: n.Unit, Price: n.Price, CreatedAt: time.Now()})
		inserted++
	}
	return inserted, nil
}

func (m *memoryRepo) UpdateItem(_ context.Context, id int64, input UpdateInput) (Item, error) {
	for i, it := range m.items {
		if it.ID == id {
			it.Name, it.Unit, it.Price = input.Name, input.Unit, input.Price
			m.items[i] = it
			return it, nil
		}
	}
	return Item{}, ErrItemNotFound
}

func (m *memoryRepo) DeleteItem(_ context.Context, id int64) error {
	for i, it := range m.items {
		if it.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

func TestParsePrice(t *testing.T) {
	cases := map[string]int64{
		"15000":   15000,
		" 2500 ":  2500,
		"12abc":   12,
		"12.75":   12,
		"abc":     0,
		"":        0,
		"-300":    -300,
		"1e3":     1,
		"+40":     40,
		"Rp 1000": 0,
	}
	for in, want := range cases {
		assert.True(t, decimal.NewFromInt(want).Equal(ParsePrice(in)), "input %q", in)
	}
}

func TestAddItemsCapitalizesAndSkipsDuplicates(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	count, err := svc.AddItems(ctx, []DraftItem{
		{Name: "kopi BUBUK", Unit: "kg", Price: "15000"},
		{Name: "gula pasir", Unit: "KARUNG", Price: "oops"},
		{Name: "Kopi bubuk", Unit: "kg", Price: "1"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	require.Len(t, repo.items, 2)
	assert.Equal(t, "Kopi Bubuk", repo.items[0].Name)
	assert.Equal(t, "Kg", repo.items[0].Unit)
	assert.True(t, repo.items[0].Price.Equal(decimal.NewFromInt(15000)))
	assert.Equal(t, "Karung", repo.items[1].Unit)
	assert.True(t, repo.items[1].Price.IsZero())
	assert.Zero(t, repo.items[1].Quantity)

	count, err = svc.AddItems(ctx, []DraftItem{{Name: "gula pasir", Unit: "kg", Price: "9000"}})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAddItemsValidation(t *testing.T) {
	svc := NewService(&memoryRepo{})
	_, err := svc.AddItems(context.Background(), nil)
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.AddItems(context.Background(), []DraftItem{{Name: "  "}})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateItemRejectsNegativePrice(t *testing.T) {
	repo := &memoryRepo{items: []Item{{ID: 1, Name: "Teh"}}}
	svc := NewService(repo)

	_, err := svc.UpdateItem(context.Background(), 1, "Teh", "Pak", decimal.NewFromInt(-1))
	require.ErrorIs(t, err, httpx.ErrValidation)

	item, err := svc.UpdateItem(context.Background(), 1, "Teh Celup", "Pak", decimal.NewFromInt(4000))
	require.NoError(t, err)
	assert.Equal(t, "Teh Celup", item.Name)

	_, err = svc.UpdateItem(context.Background(), 9, "X", "", decimal.Zero)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestHandlerBulkInsertAcceptsNumericPrice(t *testing.T) {
	repo := &memoryRepo{}
	h := NewHandler(nil, NewService(repo))
	r := chi.NewRouter()
	r.Route("/api/barang", h.MountRoutes)

	body := `{"data":[{"name":"beras","satuan":"sak","harga":"52000"},{"name":"minyak","satuan":"liter","harga":18000}]}`
	res := httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/api/barang/tambah-katalog", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, res.Code)
	require.Len(t, repo.items, 2)
	assert.True(t, repo.items[1].Price.Equal(decimal.NewFromInt(18000)))

	res = httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/api/barang/tambah-katalog", strings.NewReader(`{"data":null}`)))
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestHandlerListAndGet(t *testing.T) {
	repo := &memoryRepo{items: []Item{{ID: 1, Name: "Beras"}, {ID: 2, Name: "Minyak"}}}
	h := NewHandler(nil, NewService(repo))
	r := chi.NewRouter()
	r.Route("/api/barang", h.MountRoutes)

	res := httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/barang?q=ber", nil))
	require.Equal(t, http.StatusOK, res.Code)
	var body struct {
		Success bool       `json:"success"`
		Data    ListResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Len(t, body.Data.Items, 1)
	assert.Equal(t, shared.Pagination{Page: 1, PerPage: 1, Total: 1, TotalPages: 1}, body.Data.Pagination)

	res = httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/barang/7", nil))
	require.Equal(t, http.StatusNotFound, res.Code)
}
