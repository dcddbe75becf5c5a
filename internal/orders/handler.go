package orders

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/stokkas/stokkas/internal/platform/httpx"
	"github.com/stokkas/stokkas/internal/shared"
)

// IdempotencyHeader carries an optional client-generated key for order placement.
const IdempotencyHeader = "Idempotency-Key"

// Handler exposes order endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	location *time.Location
}

// NewHandler constructs Handler. Day ranges are read in loc.
func NewHandler(logger *slog.Logger, service *Service, loc *time.Location) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{logger: logger, service: service, location: loc}
}

// MountRoutes registers order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/buat-pesanan", h.placeOrder)
	r.Get("/history-transaksi", h.history)
}

type placeOrderRequest struct {
	CustomerID      httpx.FlexInt `json:"customerId"`
	TransactionType string        `json:"transactionType"`
	OrderItems      []struct {
		ItemID   httpx.FlexInt   `json:"itemId"`
		Quantity httpx.FlexInt   `json:"quantity"`
		Price    decimal.Decimal `json:"harga"`
	} `json:"orderItems"`
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err, "")
		return
	}
	input := PlaceOrderInput{
		CustomerID:      req.CustomerID.Int64(),
		TransactionType: req.TransactionType,
		IdempotencyKey:  strings.TrimSpace(r.Header.Get(IdempotencyHeader)),
		Lines:           make([]OrderLine, 0, len(req.OrderItems)),
	}
	for _, it := range req.OrderItems {
		input.Lines = append(input.Lines, OrderLine{ItemID: it.ItemID.Int64(), Quantity: it.Quantity.Int64(), Price: it.Price})
	}
	created, err := h.service.PlaceOrder(r.Context(), input)
	if err != nil {
		if httpx.StatusFor(err) == http.StatusInternalServerError {
			h.logger.Error("create transaction", slog.Any("error", err), slog.Int64("customer_id", input.CustomerID))
		}
		httpx.RespondError(w, err, "Failed to create transaction")
		return
	}
	httpx.Created(w, created)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("startDate") == "" || q.Get("endDate") == "" {
		httpx.Fail(w, http.StatusBadRequest, "Missing parameters")
		return
	}
	rng, err := shared.ParseDayRange(q.Get("startDate"), q.Get("endDate"), h.location)
	if err != nil {
		httpx.RespondError(w, err, "")
		return
	}
	rows, err := h.service.History(r.Context(), rng)
	if err != nil {
		h.logger.Error("fetch transactions", slog.Any("error", err))
		httpx.RespondError(w, err, "Failed to fetch transactions")
		return
	}
	httpx.OK(w, rows)
}
