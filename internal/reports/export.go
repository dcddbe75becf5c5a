package reports

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/stokkas/stokkas/internal/catalog"
)

// ContentTypeXLSX is the media type of the generated workbooks.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// sheet wraps a single-sheet workbook written row by row.
type sheet struct {
	file *excelize.File
	name string
	row  int
}

func newSheet(name string) (*sheet, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", name); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &sheet{file: f, name: name}, nil
}

func (s *sheet) header(values ...any) error {
	if err := s.append(values...); err != nil {
		return err
	}
	style, err := s.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(values), s.row)
	if err != nil {
		return err
	}
	return s.file.SetCellStyle(s.name, "A"+strconv.Itoa(s.row), last, style)
}

func (s *sheet) append(values ...any) error {
	s.row++
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	return s.file.SetSheetRow(s.name, cell, &values)
}

func (s *sheet) close() {
	_ = s.file.Close()
}

func (s *sheet) writeTo(w io.Writer, widths map[string]float64) error {
	for col, width := range widths {
		if err := s.file.SetColWidth(s.name, col, col, width); err != nil {
			return err
		}
	}
	return s.file.Write(w)
}

// WriteStockXLSX renders grouped stock movements plus the per-item totals.
func WriteStockXLSX(w io.Writer, title string, rows []StockRow, totals map[string]int64) error {
	sh, err := newSheet(title)
	if err != nil {
		return err
	}
	defer sh.close()
	if err := sh.header("No", "Tanggal", "Nama Barang", "Jumlah"); err != nil {
		return err
	}
	for i, row := range rows {
		if err := sh.append(i+1, row.Day, row.ItemName, row.Quantity); err != nil {
			return err
		}
	}
	sh.row++
	if err := sh.header("", "", "Total per Barang", "Jumlah"); err != nil {
		return err
	}
	for _, name := range sortedKeys(totals) {
		if err := sh.append("", "", name, totals[name]); err != nil {
			return err
		}
	}
	return sh.writeTo(w, map[string]float64{"A": 6, "B": 14, "C": 32, "D": 12})
}

// WriteStockLevelsXLSX renders the current quantity on hand of every item.
func WriteStockLevelsXLSX(w io.Writer, items []catalog.Item) error {
	sh, err := newSheet("Stok Barang")
	if err != nil {
		return err
	}
	defer sh.close()
	if err := sh.header("No", "Nama Barang", "Satuan", "Harga", "Jumlah"); err != nil {
		return err
	}
	for i, item := range items {
		if err := sh.append(i+1, item.Name, item.Unit, item.Price.InexactFloat64(), item.Quantity); err != nil {
			return err
		}
	}
	return sh.writeTo(w, map[string]float64{"A": 6, "B": 32, "C": 12, "D": 14, "E": 10})
}

// WriteTransactionsXLSX renders one block per customer-day group.
func WriteTransactionsXLSX(w io.Writer, groups []TransactionGroup) error {
	sh, err := newSheet("Laporan Transaksi")
	if err != nil {
		return err
	}
	defer sh.close()
	if err := sh.header("Tanggal", "Customer", "Status", "Nama Barang", "Satuan", "Harga", "Jumlah", "Subtotal"); err != nil {
		return err
	}
	for _, g := range groups {
		status := "Non Tunai"
		if g.IsPaid {
			status = "Tunai"
		}
		for _, it := range g.Items {
			if err := sh.append(g.Day, g.CustomerName, status, it.Name, it.Unit,
				it.Price.InexactFloat64(), it.Quantity, it.Subtotal.InexactFloat64()); err != nil {
				return err
			}
		}
		if err := sh.append("", "", "", "", "", "", "Total", g.Amount.InexactFloat64()); err != nil {
			return err
		}
	}
	if err := sh.header("", "", "", "", "", "", "Grand Total", GrandTotal(groups).InexactFloat64()); err != nil {
		return err
	}
	return sh.writeTo(w, map[string]float64{"A": 12, "B": 24, "C": 10, "D": 28, "E": 10, "F": 12, "G": 12, "H": 14})
}

// WriteStockCSV emits grouped stock movements as CSV.
func WriteStockCSV(w io.Writer, rows []StockRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Tanggal", "Nama Barang", "Jumlah", "Action"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{
			row.Day,
			row.ItemName,
			strconv.FormatInt(row.Quantity, 10),
			string(row.Action),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTransactionsCSV emits one line per merged item of every group.
func WriteTransactionsCSV(w io.Writer, groups []TransactionGroup) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Tanggal", "Customer", "Tunai", "Nama Barang", "Jumlah", "Harga", "Subtotal"}); err != nil {
		return err
	}
	for _, g := range groups {
		for _, it := range g.Items {
			if err := writer.Write([]string{
				g.Day,
				g.CustomerName,
				strconv.FormatBool(g.IsPaid),
				it.Name,
				strconv.FormatInt(it.Quantity, 10),
				it.Price.StringFixed(0),
				it.Subtotal.StringFixed(0),
			}); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
