package inventory

import (
	"context"
	"time"

	"github.com/stokkas/stokkas/internal/platform/db"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListHistory(ctx context.Context, filter HistoryFilter) ([]StockChange, error)
	RecentChanges(ctx context.Context, limit int) ([]StockChange, error)
}

// MetricsPort receives one call per committed stock change.
type MetricsPort interface {
	StockMutation(action string)
}

// Service coordinates inventory operations.
type Service struct {
	repo    RepositoryPort
	metrics MetricsPort
	clock   func() time.Time
}

// NewService builds Service. metrics may be nil.
func NewService(repo RepositoryPort, metrics MetricsPort) *Service {
	return &Service{repo: repo, metrics: metrics, clock: time.Now}
}

// ChangeStock adjusts an item's quantity on hand and records the ledger entry
// in the same transaction. The ledger keeps the requested quantity even when a
// decrease is clamped at zero.
func (s *Service) ChangeStock(ctx context.Context, input MutationInput) (Item, error) {
	if input.ItemID == 0 || input.Quantity == 0 || input.Direction == "" {
		return Item{}, ErrMissingFields
	}
	dir, err := ParseDirection(input.Direction)
	if err != nil {
		return Item{}, err
	}

	var updated Item
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		item, err := tx.GetItemForUpdate(ctx, input.ItemID)
		if err != nil {
			return err
		}
		next, err := Apply(item.Quantity, input.Quantity, dir)
		if err != nil {
			return err
		}
		updated, err = tx.UpdateQuantity(ctx, item.ID, next)
		if err != nil {
			return err
		}
		itemID := updated.ID
		_, err = tx.InsertStockChange(ctx, StockChange{
			ItemID:    &itemID,
			ItemName:  updated.Name,
			Quantity:  input.Quantity,
			Action:    dir,
			ChangedAt: s.clock().UTC(),
		})
		return err
	})
	if err != nil {
		return Item{}, db.MapConflict(err)
	}
	if s.metrics != nil {
		s.metrics.StockMutation(string(dir))
	}
	return updated, nil
}

// History lists ledger entries for the report screens.
func (s *Service) History(ctx context.Context, filter HistoryFilter) ([]StockChange, error) {
	return s.repo.ListHistory(ctx, filter)
}

// Recent returns the newest ledger entries.
func (s *Service) Recent(ctx context.Context, limit int) ([]StockChange, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.repo.RecentChanges(ctx, limit)
}
