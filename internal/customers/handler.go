package customers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stokkas/stokkas/internal/platform/httpx"
	"github.com/stokkas/stokkas/internal/shared"
)

// Handler exposes customer endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validator: httpx.NewValidator()}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.service.List(r.Context(), q.Get("q"), shared.ParsePageRequest(q))
	if err != nil {
		h.logger.Error("list customers failed", slog.Any("error", err))
		httpx.RespondError(w, err, "Failed to fetch Customer data")
		return
	}
	httpx.OK(w, result)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err, "")
		return
	}
	customer, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logIfInternal("get customer failed", err)
		httpx.RespondError(w, err, "Failed to fetch Customer")
		return
	}
	httpx.OK(w, customer)
}

func (h *Handler) CreateMany(w http.ResponseWriter, r *http.Request) {
	var req bulkCreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err, "")
		return
	}
	if req.Data == nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid data format. Expected an array.")
		return
	}
	input := make([]NewCustomer, 0, len(req.Data))
	for i, c := range req.Data {
		if err := h.validator.Struct(c); err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: data[%d]: %s", httpx.ErrValidation, i, httpx.PublicMessage(httpx.ValidationError(err))), "")
			return
		}
		input = append(input, NewCustomer{Name: c.Name, Field: c.Field})
	}
	count, err := h.service.CreateMany(r.Context(), input)
	if err != nil {
		h.logIfInternal("create customers failed", err)
		httpx.RespondError(w, err, "Failed to save customers")
		return
	}
	httpx.Created(w, map[string]int64{"count": count})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err, "")
		return
	}
	var req updateCustomerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err, "")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ValidationError(err), "")
		return
	}
	customer, err := h.service.Update(r.Context(), id, Patch{Name: req.Name, Field: req.Field})
	if err != nil {
		h.logIfInternal("update customer failed", err)
		httpx.RespondError(w, err, "Failed to update Customer")
		return
	}
	httpx.OK(w, customer)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err, "")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logIfInternal("delete customer failed", err)
		httpx.RespondError(w, err, "Failed to delete Customer")
		return
	}
	httpx.Message(w, "Customer berhasil dihapus")
}

func (h *Handler) logIfInternal(msg string, err error) {
	if httpx.StatusFor(err) == http.StatusInternalServerError {
		h.logger.Error(msg, slog.Any("error", err))
	}
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id", httpx.ErrValidation)
	}
	return id, nil
}
