// Package reports turns ledger and transaction rows into the day-grouped
// views printed by the office: stock in/out per item and sales per customer.
package reports

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stokkas/stokkas/internal/inventory"
	"github.com/stokkas/stokkas/internal/orders"
	"github.com/stokkas/stokkas/internal/platform/httpx"
	"github.com/stokkas/stokkas/internal/shared"
)

// StockRow is the summed movement of one item on one day.
type StockRow struct {
	ItemName   string              `json:"namaBarang"`
	Day        string              `json:"tanggal"`
	Quantity   int64               `json:"jumlah"`
	Action     inventory.Direction `json:"action"`
	OccurredAt time.Time           `json:"changedAt"`
}

// GroupStockHistory sums quantities per (day, item name). Action and
// timestamp come from the first entry seen for the group and output keeps the
// order in which groups first appear.
func GroupStockHistory(changes []inventory.StockChange, loc *time.Location) []StockRow {
	index := make(map[string]int, len(changes))
	rows := make([]StockRow, 0, len(changes))
	for _, c := range changes {
		day := shared.DayKey(c.ChangedAt, loc)
		key := day + "\x00" + c.ItemName
		if i, ok := index[key]; ok {
			rows[i].Quantity += c.Quantity
			continue
		}
		index[key] = len(rows)
		rows = append(rows, StockRow{
			ItemName:   c.ItemName,
			Day:        day,
			Quantity:   c.Quantity,
			Action:     c.Action,
			OccurredAt: c.ChangedAt,
		})
	}
	return rows
}

// TotalsByItem sums quantities per item name across the whole slice.
func TotalsByItem(changes []inventory.StockChange) map[string]int64 {
	totals := make(map[string]int64)
	for _, c := range changes {
		totals[c.ItemName] += c.Quantity
	}
	return totals
}

// PaymentFilter selects transactions by settlement.
type PaymentFilter string

const (
	PaymentAll    PaymentFilter = "semua"
	PaymentCash   PaymentFilter = "tunai"
	PaymentCredit PaymentFilter = "non tunai"
)

// ParsePaymentFilter reads the type query parameter. Blank means all.
func ParsePaymentFilter(raw string) (PaymentFilter, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "semua":
		return PaymentAll, nil
	case "tunai":
		return PaymentCash, nil
	case "non tunai", "non-tunai", "nontunai":
		return PaymentCredit, nil
	default:
		return "", fmt.Errorf("%w: type must be semua, tunai or non tunai", httpx.ErrValidation)
	}
}

// FilterByPayment keeps the transactions matching filter.
func FilterByPayment(txs []orders.Transaction, filter PaymentFilter) []orders.Transaction {
	if filter == PaymentAll || filter == "" {
		return txs
	}
	wantPaid := filter == PaymentCash
	out := make([]orders.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.IsPaid == wantPaid {
			out = append(out, tx)
		}
	}
	return out
}

// GroupedItem is an item line merged across the transactions of a group.
type GroupedItem struct {
	ItemID   int64           `json:"itemId"`
	Name     string          `json:"namaBarang"`
	Unit     string          `json:"satuan"`
	Price    decimal.Decimal `json:"harga"`
	Quantity int64           `json:"jumlah"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// TransactionGroup is every transaction of one customer on one day.
type TransactionGroup struct {
	TransactionID  int64           `json:"id"`
	CustomerID     int64           `json:"customerId"`
	CustomerName   string          `json:"customerName"`
	Day            string          `json:"tanggal"`
	Date           time.Time       `json:"date"`
	IsPaid         bool            `json:"isPaid"`
	Items          []GroupedItem   `json:"items"`
	Amount         decimal.Decimal `json:"amount"`
	TransactionIDs []int64         `json:"transactionIds"`
}

// GroupTransactions merges transactions per (customer name, day). Items are
// merged by item name with summed quantities and the amount is recomputed
// from the merged quantities at the current item price, not from the stored
// transaction totals.
func GroupTransactions(txs []orders.Transaction, loc *time.Location) []TransactionGroup {
	index := make(map[string]int, len(txs))
	groups := make([]TransactionGroup, 0, len(txs))
	itemIndex := make([]map[string]int, 0, len(txs))
	for _, tx := range txs {
		name := customerName(tx)
		day := shared.DayKey(tx.Date, loc)
		key := name + "\x00" + day
		gi, ok := index[key]
		if !ok {
			gi = len(groups)
			index[key] = gi
			groups = append(groups, TransactionGroup{
				TransactionID: tx.ID,
				CustomerID:    tx.CustomerID,
				CustomerName:  name,
				Day:           day,
				Date:          tx.Date,
				IsPaid:        tx.IsPaid,
				Items:         []GroupedItem{},
				Amount:        decimal.Zero,
			})
			itemIndex = append(itemIndex, map[string]int{})
		}
		group := &groups[gi]
		group.TransactionIDs = append(group.TransactionIDs, tx.ID)
		for _, line := range tx.Items {
			item := groupedItem(line)
			if ii, seen := itemIndex[gi][item.Name]; seen {
				group.Items[ii].Quantity += item.Quantity
				continue
			}
			itemIndex[gi][item.Name] = len(group.Items)
			group.Items = append(group.Items, item)
		}
	}
	for gi := range groups {
		total := decimal.Zero
		for ii := range groups[gi].Items {
			it := &groups[gi].Items[ii]
			it.Subtotal = it.Price.Mul(decimal.NewFromInt(it.Quantity))
			total = total.Add(it.Subtotal)
		}
		groups[gi].Amount = total
	}
	return groups
}

// GrandTotal sums the group amounts.
func GrandTotal(groups []TransactionGroup) decimal.Decimal {
	total := decimal.Zero
	for _, g := range groups {
		total = total.Add(g.Amount)
	}
	return total
}

func customerName(tx orders.Transaction) string {
	if tx.Customer != nil {
		return tx.Customer.Name
	}
	return fmt.Sprintf("customer #%d", tx.CustomerID)
}

func groupedItem(line orders.LineItem) GroupedItem {
	if line.Item == nil {
		return GroupedItem{ItemID: line.ItemID, Name: fmt.Sprintf("barang #%d", line.ItemID), Price: decimal.Zero, Quantity: line.Quantity}
	}
	return GroupedItem{
		ItemID:   line.Item.ID,
		Name:     line.Item.Name,
		Unit:     line.Item.Unit,
		Price:    line.Item.Price,
		Quantity: line.Quantity,
	}
}
