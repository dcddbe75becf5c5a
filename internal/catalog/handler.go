package catalog

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

// Handler exposes catalog endpoints.
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

// MountRoutes registers catalog routes. The inventory handler shares the same
// prefix; chi matches its static segments ahead of "/{id}".
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listItems)
	r.Post("/tambah-katalog", h.addItems)
	r.Get("/{id}", h.getItem)
	r.Put("/{id}", h.updateItem)
	r.Delete("/{id}", h.deleteItem)
}

type bulkRequest struct {
	Data []struct {
		Name  string    `json:"name"`
		Unit  string    `json:"satuan"`
		Price PriceText `json:"harga"`
	} `json:"data"`
}

type updateRequest struct {
	Name  string    `json:"name" validate:"required,max=200"`
	Price PriceText `json:"harga"`
	Unit  string    `json:"satuan" validate:"max=50"`
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.service.ListItems(r.Context(), ListFilter{Query: q.Get("q"), Page: shared.ParsePageRequest(q)})
	if err != nil {
		h.logger.Error("list items", slog.Any("error", err))
		httpx.RespondError(w, err, "Failed to fetch Barang data")
		return
	}
	httpx.OK(w, result)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err, "")
		return
	}
	item, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		h.logIfInternal("get item", err)
		httpx.RespondError(w, err, "Failed to fetch Barang")
		return
	}
	httpx.OK(w, item)
}

func (h *Handler) addItems(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err, "")
		return
	}
	if req.Data == nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid data format. Expected an array.")
		return
	}
	drafts := make([]DraftItem, 0, len(req.Data))
	for _, d := range req.Data {
		drafts = append(drafts, DraftItem{Name: d.Name, Unit: d.Unit, Price: string(d.Price)})
	}
	count, err := h.service.AddItems(r.Context(), drafts)
	if err != nil {
		h.logIfInternal("add items", err)
		httpx.RespondError(w, err, "Failed to save items")
		return
	}
	httpx.Created(w, map[string]int64{"count": count})
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err, "")
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err, "")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ValidationError(err), "")
		return
	}
	item, err := h.service.UpdateItem(r.Context(), id, req.Name, req.Unit, ParsePrice(string(req.Price)))
	if err != nil {
		h.logIfInternal("update item", err)
		httpx.RespondError(w, err, "Failed to update Barang")
		return
	}
	httpx.OK(w, item)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err, "")
		return
	}
	if err := h.service.DeleteItem(r.Context(), id); err != nil {
		h.logIfInternal("delete item", err)
		httpx.RespondError(w, err, "Failed to delete Barang")
		return
	}
	httpx.Message(w, "Barang berhasil dihapus")
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
