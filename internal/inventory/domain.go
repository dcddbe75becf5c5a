// Package inventory implements stock mutation: it moves the stored quantity
// of an item and appends one immutable ledger entry per change.
package inventory

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stokkas/stokkas/internal/platform/httpx"
	"github.com/stokkas/stokkas/internal/shared"
)

// Direction is the stored action of a stock change.
type Direction string

const (
	// DirectionIncrease adds to the quantity on hand ("barang masuk").
	DirectionIncrease Direction = "tambah"
	// DirectionDecrease subtracts from the quantity on hand ("barang keluar").
	DirectionDecrease Direction = "kurangi"
)

// ParseDirection maps user input onto a Direction.
func ParseDirection(raw string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "tambah", "increase", "masuk":
		return DirectionIncrease, nil
	case "kurangi", "kurang", "decrease", "keluar":
		return DirectionDecrease, nil
	default:
		return "", fmt.Errorf("%w: action must be tambah or kurangi", httpx.ErrValidation)
	}
}

// Item is the slice of a catalog row the mutation needs.
type Item struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Unit      string          `json:"satuan"`
	Price     decimal.Decimal `json:"harga"`
	Quantity  int64           `json:"jumlah"`
	CreatedAt time.Time       `json:"createdAt"`
}

// StockChange is an immutable ledger entry. Quantity is the requested amount,
// which can exceed the effective change when a decrease was clamped at zero.
type StockChange struct {
	ID        int64     `json:"id"`
	ItemID    *int64    `json:"itemId"`
	ItemName  string    `json:"namaBarang"`
	Quantity  int64     `json:"jumlah"`
	Action    Direction `json:"action"`
	ChangedAt time.Time `json:"changedAt"`
}

// MutationInput is the raw request of a stock change.
type MutationInput struct {
	ItemID    int64
	Quantity  int64
	Direction string
}

// HistoryFilter selects ledger entries inside a half-open time range.
type HistoryFilter struct {
	Range  shared.Range
	Action Direction
}

// ErrItemNotFound is returned when the mutation targets an unknown item.
var ErrItemNotFound = fmt.Errorf("%w: Item not found", httpx.ErrNotFound)

// ErrMissingFields mirrors the falsy-field check on mutation input.
var ErrMissingFields = fmt.Errorf("%w: Missing required fields", httpx.ErrValidation)

// ErrQuantityTooLarge is returned when the change would overflow the stored quantity.
var ErrQuantityTooLarge = fmt.Errorf("%w: quantity too large", httpx.ErrValidation)

// Apply returns the new quantity on hand. Decreases clamp at zero; the result
// is never negative even for a negative requested quantity. A result past
// math.MaxInt64 is rejected rather than wrapped.
func Apply(onHand, quantity int64, dir Direction) (int64, error) {
	next := onHand
	switch dir {
	case DirectionIncrease:
		if quantity > 0 && onHand > math.MaxInt64-quantity {
			return onHand, ErrQuantityTooLarge
		}
		next = onHand + quantity
	case DirectionDecrease:
		if quantity < 0 && onHand > math.MaxInt64+quantity {
			return onHand, ErrQuantityTooLarge
		}
		next = onHand - quantity
	}
	if next < 0 {
		return 0, nil
	}
	return next, nil
}
