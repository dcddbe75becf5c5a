package inventory

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stokkas/stokkas/internal/platform/httpx"
	"github.com/stokkas/stokkas/internal/shared"
)

// Handler exposes inventory HTTP endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	location *time.Location
}

// NewHandler creates handler instance. Day ranges are read in loc.
func NewHandler(logger *slog.Logger, service *Service, loc *time.Location) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{logger: logger, service: service, location: loc}
}

// MountRoutes registers inventory routes under the item prefix.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/ubah-stok", h.changeStock)
	r.Get("/history-barang", h.history)
}

type changeStockRequest struct {
	ID       httpx.FlexInt `json:"id"`
	Quantity httpx.FlexInt `json:"quantity"`
	Action   string        `json:"action"`
}

func (h *Handler) changeStock(w http.ResponseWriter, r *http.Request) {
	var req changeStockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err, "")
		return
	}
	item, err := h.service.ChangeStock(r.Context(), MutationInput{
		ItemID:    req.ID.Int64(),
		Quantity:  req.Quantity.Int64(),
		Direction: req.Action,
	})
	if err != nil {
		if httpx.StatusFor(err) == http.StatusInternalServerError {
			h.logger.Error("update item quantity", slog.Any("error", err), slog.Int64("item_id", req.ID.Int64()))
		}
		httpx.RespondError(w, err, "Failed to update item quantity")
		return
	}
	httpx.OK(w, item)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("startDate") == "" || q.Get("endDate") == "" || q.Get("action") == "" {
		httpx.Fail(w, http.StatusBadRequest, "Missing parameters")
		return
	}
	rng, err := shared.ParseDayRange(q.Get("startDate"), q.Get("endDate"), h.location)
	if err != nil {
		httpx.RespondError(w, err, "")
		return
	}
	action, err := ParseDirection(q.Get("action"))
	if err != nil {
		httpx.RespondError(w, err, "")
		return
	}
	rows, err := h.service.History(r.Context(), HistoryFilter{Range: rng, Action: action})
	if err != nil {
		h.logger.Error("fetch stock history", slog.Any("error", err))
		httpx.RespondError(w, err, "Failed to fetch HistoryBarang data")
		return
	}
	httpx.OK(w, rows)
}
