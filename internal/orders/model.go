// Package orders records sales transactions with their line items and accrues
// customer debt for unpaid ones.
package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stokkas/stokkas/internal/platform/httpx"
)

// PaymentCash is the transaction type that marks an order as paid. Any other
// value is treated as unpaid ("non tunai").
const PaymentCash = "tunai"

// Transaction is a recorded order. It is never mutated after creation.
type Transaction struct {
	ID         int64           `json:"id"`
	CustomerID int64           `json:"customerId"`
	Date       time.Time       `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
	IsPaid     bool            `json:"isPaid"`
	Customer   *CustomerRef    `json:"customer,omitempty"`
	Items      []LineItem      `json:"items"`
}

// LineItem is one ordered item. The price is not stored; Item carries the
// current catalog price when read back.
type LineItem struct {
	ID            int64    `json:"id"`
	TransactionID int64    `json:"transactionId"`
	ItemID        int64    `json:"itemId"`
	Quantity      int64    `json:"jumlah"`
	Item          *ItemRef `json:"barang,omitempty"`
}

// CustomerRef is the customer joined onto a transaction.
type CustomerRef struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Field string          `json:"field"`
	Debt  decimal.Decimal `json:"debt"`
}

// ItemRef is the catalog item joined onto a line item.
type ItemRef struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Unit  string          `json:"satuan"`
	Price decimal.Decimal `json:"harga"`
}

// OrderLine is a requested line with the unit price shown at selection time.
type OrderLine struct {
	ItemID   int64
	Quantity int64
	Price    decimal.Decimal
}

// PlaceOrderInput is a validated order request.
type PlaceOrderInput struct {
	CustomerID      int64
	TransactionType string
	Lines           []OrderLine
	IdempotencyKey  string
}

// Paid reports whether the transaction type settles the order immediately.
func (in PlaceOrderInput) Paid() bool {
	return strings.EqualFold(strings.TrimSpace(in.TransactionType), PaymentCash)
}

// Total sums quantity × unit price over the lines.
func Total(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(l.Quantity)))
	}
	return total
}

var (
	// ErrCustomerNotFound is returned when the order targets an unknown customer.
	ErrCustomerNotFound = fmt.Errorf("%w: customer tidak ditemukan", httpx.ErrNotFound)
	// ErrItemNotFound is returned when a line references an unknown item.
	ErrItemNotFound = fmt.Errorf("%w: barang tidak ditemukan", httpx.ErrNotFound)
)
