package dashboard

import (
	"context"
	"time"

	"github.com/stokkas/stokkas/internal/inventory"
	"github.com/stokkas/stokkas/internal/orders"
)

// CountsPort computes the aggregates.
type CountsPort interface {
	Counts(ctx context.Context, w Windows) (Counts, error)
}

// TransactionsPort lists the latest transactions.
type TransactionsPort interface {
	Recent(ctx context.Context, limit int) ([]orders.Transaction, error)
}

// MovementsPort lists the latest stock changes.
type MovementsPort interface {
	Recent(ctx context.Context, limit int) ([]inventory.StockChange, error)
}

// Service assembles the dashboard.
type Service struct {
	counts    CountsPort
	txs       TransactionsPort
	movements MovementsPort
	location  *time.Location
	clock     func() time.Time
}

// NewService constructs Service. Day boundaries follow loc.
func NewService(counts CountsPort, txs TransactionsPort, movements MovementsPort, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{counts: counts, txs: txs, movements: movements, location: loc, clock: time.Now}
}

// Summary loads the dashboard for the current moment.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	recent, err := s.txs.Recent(ctx, RecentLimit)
	if err != nil {
		return Summary{}, err
	}
	movements, err := s.movements.Recent(ctx, RecentLimit)
	if err != nil {
		return Summary{}, err
	}
	counts, err := s.counts.Counts(ctx, WindowsAt(s.clock(), s.location))
	if err != nil {
		return Summary{}, err
	}
	if recent == nil {
		recent = []orders.Transaction{}
	}
	if movements == nil {
		movements = []inventory.StockChange{}
	}
	return Summary{RecentTransactions: recent, RecentItemMovements: movements, Counts: counts}, nil
}
