package orders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stokkas/stokkas/internal/platform/db"
	"github.com/stokkas/stokkas/internal/platform/httpx"
	"github.com/stokkas/stokkas/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListBetween(ctx context.Context, rng shared.Range) ([]Transaction, error)
	Recent(ctx context.Context, limit int) ([]Transaction, error)
}

// IdempotencyPort guards against double submission of the same order.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key, module string) error
}

// MetricsPort receives one call per committed order.
type MetricsPort interface {
	OrderPlaced(paid bool)
}

const idempotencyModule = "orders"

// Service coordinates order placement.
type Service struct {
	repo        RepositoryPort
	idempotency IdempotencyPort
	metrics     MetricsPort
	logger      *slog.Logger
	clock       func() time.Time
}

// NewService builds Service. idempotency, metrics and logger may be nil.
func NewService(repo RepositoryPort, idem IdempotencyPort, metrics MetricsPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, idempotency: idem, metrics: metrics, logger: logger, clock: time.Now}
}

// PlaceOrder records the transaction and its line items and, for unpaid
// orders, raises the customer's debt by the total. All writes share one
// database transaction. Stock is not touched.
func (s *Service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (Transaction, error) {
	if err := validate(input); err != nil {
		return Transaction{}, err
	}

	insertedKey := false
	if s.idempotency != nil && input.IdempotencyKey != "" {
		if err := s.idempotency.CheckAndInsert(ctx, input.IdempotencyKey, idempotencyModule); err != nil {
			return Transaction{}, err
		}
		insertedKey = true
	}

	paid := input.Paid()
	total := Total(input.Lines)
	var created Transaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		created, err = tx.InsertTransaction(ctx, Transaction{
			CustomerID: input.CustomerID,
			Date:       s.clock().UTC(),
			Amount:     total,
			IsPaid:     paid,
		})
		if err != nil {
			return err
		}
		if err := tx.InsertLineItems(ctx, created.ID, input.Lines); err != nil {
			return err
		}
		created.Items = make([]LineItem, 0, len(input.Lines))
		for _, l := range input.Lines {
			created.Items = append(created.Items, LineItem{TransactionID: created.ID, ItemID: l.ItemID, Quantity: l.Quantity})
		}
		if paid {
			return nil
		}
		_, err = tx.IncrementDebt(ctx, input.CustomerID, total)
		return err
	})
	if err != nil {
		if insertedKey {
			s.releaseKey(ctx, input.IdempotencyKey)
		}
		return Transaction{}, db.MapConflict(err)
	}
	if s.metrics != nil {
		s.metrics.OrderPlaced(paid)
	}
	return created, nil
}

// releaseKey frees the idempotency key of a failed order so the client can
// retry. It outlives the request context, which may be what failed the order.
func (s *Service) releaseKey(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.idempotency.Delete(ctx, key, idempotencyModule); err != nil {
		s.logger.Error("release idempotency key", slog.Any("error", err), slog.String("key", key))
	}
}

// History lists transactions dated inside the range.
func (s *Service) History(ctx context.Context, rng shared.Range) ([]Transaction, error) {
	return s.repo.ListBetween(ctx, rng)
}

// Recent returns the newest transactions.
func (s *Service) Recent(ctx context.Context, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.repo.Recent(ctx, limit)
}

func validate(input PlaceOrderInput) error {
	if input.CustomerID <= 0 {
		return fmt.Errorf("%w: customerId is required", httpx.ErrValidation)
	}
	if len(input.Lines) == 0 {
		return fmt.Errorf("%w: orderItems must not be empty", httpx.ErrValidation)
	}
	for i, l := range input.Lines {
		if l.ItemID <= 0 {
			return fmt.Errorf("%w: orderItems[%d].itemId is required", httpx.ErrValidation, i)
		}
		if l.Quantity <= 0 {
			return fmt.Errorf("%w: orderItems[%d].quantity must be positive", httpx.ErrValidation, i)
		}
		if l.Price.IsNegative() {
			return fmt.Errorf("%w: orderItems[%d].harga must not be negative", httpx.ErrValidation, i)
		}
	}
	return nil
}
