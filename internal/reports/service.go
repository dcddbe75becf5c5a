package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stokkas/stokkas/internal/catalog"
	"github.com/stokkas/stokkas/internal/inventory"
	"github.com/stokkas/stokkas/internal/orders"
	"github.com/stokkas/stokkas/internal/shared"
)

// StockSource yields ledger rows.
type StockSource interface {
	History(ctx context.Context, filter inventory.HistoryFilter) ([]inventory.StockChange, error)
}

// TransactionSource yields transactions with joined customers and items.
type TransactionSource interface {
	History(ctx context.Context, rng shared.Range) ([]orders.Transaction, error)
}

// ItemSource yields the catalog with current quantities.
type ItemSource interface {
	ListItems(ctx context.Context, filter catalog.ListFilter) (catalog.ListResult, error)
}

// Service assembles report views from the domain services.
type Service struct {
	stock    StockSource
	txs      TransactionSource
	items    ItemSource
	location *time.Location
}

// NewService constructs Service. Days are bucketed in loc.
func NewService(stock StockSource, txs TransactionSource, items ItemSource, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{stock: stock, txs: txs, items: items, location: loc}
}

// StockReport is the grouped stock history of one direction.
type StockReport struct {
	Action inventory.Direction `json:"action"`
	Rows   []StockRow          `json:"rows"`
	Totals map[string]int64    `json:"totals"`
}

// TransactionReport is the grouped transaction history.
type TransactionReport struct {
	Type       PaymentFilter      `json:"type"`
	Groups     []TransactionGroup `json:"groups"`
	GrandTotal decimal.Decimal    `json:"grandTotal"`
}

// Stock builds the grouped movement report for one direction.
func (s *Service) Stock(ctx context.Context, rng shared.Range, action inventory.Direction) (StockReport, error) {
	changes, err := s.stock.History(ctx, inventory.HistoryFilter{Range: rng, Action: action})
	if err != nil {
		return StockReport{}, err
	}
	return StockReport{
		Action: action,
		Rows:   GroupStockHistory(changes, s.location),
		Totals: TotalsByItem(changes),
	}, nil
}

// StockLevels lists every item with its quantity on hand.
func (s *Service) StockLevels(ctx context.Context) ([]catalog.Item, error) {
	res, err := s.items.ListItems(ctx, catalog.ListFilter{})
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

// Transactions builds the grouped transaction report.
func (s *Service) Transactions(ctx context.Context, rng shared.Range, filter PaymentFilter) (TransactionReport, error) {
	txs, err := s.txs.History(ctx, rng)
	if err != nil {
		return TransactionReport{}, err
	}
	groups := GroupTransactions(FilterByPayment(txs, filter), s.location)
	return TransactionReport{Type: filter, Groups: groups, GrandTotal: GrandTotal(groups)}, nil
}

// Location returns the timezone reports are bucketed in.
func (s *Service) Location() *time.Location {
	return s.location
}
