// Package catalog manages the item master: names, units, prices and the
// stored quantity on hand.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stokkas/stokkas/internal/platform/httpx"
	"github.com/stokkas/stokkas/internal/shared"
)

// Item is a catalog entry.
type Item struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Unit      string          `json:"satuan"`
	Price     decimal.Decimal `json:"harga"`
	Quantity  int64           `json:"jumlah"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewItem is a normalised row ready for insertion.
type NewItem struct {
	Name  string
	Unit  string
	Price decimal.Decimal
}

// UpdateInput captures editable catalog fields. Quantity is not editable here.
type UpdateInput struct {
	Name  string
	Unit  string
	Price decimal.Decimal
}

// ListFilter narrows catalog listings.
type ListFilter struct {
	Query string
	Page  shared.PageRequest
}

// ListResult carries a page of items.
type ListResult struct {
	Items      []Item            `json:"items"`
	Pagination shared.Pagination `json:"pagination"`
}

// ErrItemNotFound is returned for unknown item ids.
var ErrItemNotFound = fmt.Errorf("%w: barang tidak ditemukan", httpx.ErrNotFound)

// ErrItemInUse is returned when an item is still referenced by transactions.
var ErrItemInUse = fmt.Errorf("%w: barang masih digunakan pada transaksi", httpx.ErrInUse)

// PriceText accepts a price sent either as a JSON string or a JSON number.
type PriceText string

// UnmarshalJSON implements json.Unmarshaler.
func (p *PriceText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = PriceText(s)
		return nil
	}
	*p = PriceText(data)
	return nil
}

// ParsePrice reads the leading integer of s, ignoring anything after it.
// Text without a leading integer yields zero.
func ParsePrice(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s[:end])
	if err != nil {
		return decimal.Zero
	}
	return d
}
