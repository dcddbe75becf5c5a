// Package customers keeps the customer ledger: names, business field and the
// outstanding debt accrued by unpaid orders.
package customers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stokkas/stokkas/internal/platform/httpx"
)

// Customer is a ledger row.
type Customer struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Field     string          `json:"field"`
	Debt      decimal.Decimal `json:"debt"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Key mirrors the id as a string for table widgets.
func (c Customer) Key() string {
	return strconv.FormatInt(c.ID, 10)
}

// Row is the list representation.
type Row struct {
	Key string `json:"key"`
	Customer
}

// NewCustomer is a normalised insert row. Debt always starts at zero.
type NewCustomer struct {
	Name  string
	Field string
}

// Patch carries the editable fields; nil leaves the column unchanged.
type Patch struct {
	Name  *string
	Field *string
}

// ListFilter narrows customer listings.
type ListFilter struct {
	Search string
	Limit  int
	Offset int
}

var (
	// ErrCustomerNotFound is returned for unknown customer ids.
	ErrCustomerNotFound = fmt.Errorf("%w: customer tidak ditemukan", httpx.ErrNotFound)
	// ErrCustomerInUse is returned when transactions still reference the customer.
	ErrCustomerInUse = fmt.Errorf("%w: customer masih memiliki transaksi", httpx.ErrInUse)
)
