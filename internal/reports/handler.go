package reports

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stokkas/stokkas/internal/inventory"
	"github.com/stokkas/stokkas/internal/platform/httpx"
	"github.com/stokkas/stokkas/internal/shared"
)

// Handler serves report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler creates handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/stok", h.stock)
	r.Get("/transaksi", h.transactions)
}

func (h *Handler) stock(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := strings.ToLower(q.Get("format"))
	if strings.EqualFold(q.Get("type"), "stok") {
		items, err := h.service.StockLevels(r.Context())
		if err != nil {
			h.logger.Error("stock levels report", slog.Any("error", err))
			httpx.RespondError(w, err, "Failed to fetch stock report")
			return
		}
		if format == "xlsx" {
			var buf bytes.Buffer
			if err := WriteStockLevelsXLSX(&buf, items); err != nil {
				h.writeExportError(w, err)
				return
			}
			h.attach(w, &buf, ContentTypeXLSX, "stok-barang.xlsx")
			return
		}
		httpx.OK(w, items)
		return
	}

	if q.Get("startDate") == "" || q.Get("endDate") == "" || q.Get("type") == "" {
		httpx.Fail(w, http.StatusBadRequest, "Missing parameters")
		return
	}
	rng, err := shared.ParseDayRange(q.Get("startDate"), q.Get("endDate"), h.service.Location())
	if err != nil {
		httpx.RespondError(w, err, "")
		return
	}
	action, err := inventory.ParseDirection(q.Get("type"))
	if err != nil {
		httpx.RespondError(w, err, "")
		return
	}
	report, err := h.service.Stock(r.Context(), rng, action)
	if err != nil {
		h.logger.Error("stock history report", slog.Any("error", err))
		httpx.RespondError(w, err, "Failed to fetch stock report")
		return
	}
	title := "Barang Masuk"
	if action == inventory.DirectionDecrease {
		title = "Barang Keluar"
	}
	name := fileName(strings.ToLower(strings.ReplaceAll(title, " ", "-")), rng)
	switch format {
	case "xlsx":
		var buf bytes.Buffer
		if err := WriteStockXLSX(&buf, title, report.Rows, report.Totals); err != nil {
			h.writeExportError(w, err)
			return
		}
		h.attach(w, &buf, ContentTypeXLSX, name+".xlsx")
	case "csv":
		var buf bytes.Buffer
		if err := WriteStockCSV(&buf, report.Rows); err != nil {
			h.writeExportError(w, err)
			return
		}
		h.attach(w, &buf, "text/csv; charset=utf-8", name+".csv")
	default:
		httpx.OK(w, report)
	}
}

func (h *Handler) transactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("startDate") == "" || q.Get("endDate") == "" {
		httpx.Fail(w, http.StatusBadRequest, "Missing parameters")
		return
	}
	rng, err := shared.ParseDayRange(q.Get("startDate"), q.Get("endDate"), h.service.Location())
	if err != nil {
		httpx.RespondError(w, err, "")
		return
	}
	filter, err := ParsePaymentFilter(q.Get("type"))
	if err != nil {
		httpx.RespondError(w, err, "")
		return
	}
	report, err := h.service.Transactions(r.Context(), rng, filter)
	if err != nil {
		h.logger.Error("transaction report", slog.Any("error", err))
		httpx.RespondError(w, err, "Failed to fetch transaction report")
		return
	}
	name := fileName("laporan-transaksi", rng)
	switch strings.ToLower(q.Get("format")) {
	case "xlsx":
		var buf bytes.Buffer
		if err := WriteTransactionsXLSX(&buf, report.Groups); err != nil {
			h.writeExportError(w, err)
			return
		}
		h.attach(w, &buf, ContentTypeXLSX, name+".xlsx")
	case "csv":
		var buf bytes.Buffer
		if err := WriteTransactionsCSV(&buf, report.Groups); err != nil {
			h.writeExportError(w, err)
			return
		}
		h.attach(w, &buf, "text/csv; charset=utf-8", name+".csv")
	default:
		httpx.OK(w, report)
	}
}

func (h *Handler) attach(w http.ResponseWriter, buf *bytes.Buffer, contentType, name string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("write report", slog.Any("error", err))
	}
}

func (h *Handler) writeExportError(w http.ResponseWriter, err error) {
	h.logger.Error("render report", slog.Any("error", err))
	httpx.Fail(w, http.StatusInternalServerError, "Failed to export report")
}

func fileName(prefix string, rng shared.Range) string {
	last := rng.To.Add(-time.Nanosecond)
	return fmt.Sprintf("%s_%s_%s", prefix, rng.From.Format("20060102"), last.Format("20060102"))
}
