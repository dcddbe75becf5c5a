package users

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

// Handler manages user management endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validator: httpx.NewValidator()}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listUsers)
	r.Get("/{id}", h.getUser)
	r.Put("/{id}", h.updateUser)
	r.Delete("/{id}", h.deleteUser)
}

type updateRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		httpx.RespondError(w, err, "Failed to fetch User data")
		return
	}
	httpx.OK(w, users)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err, "")
		return
	}
	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		h.logIfInternal("get user failed", err)
		httpx.RespondError(w, err, "Failed to fetch User")
		return
	}
	httpx.OK(w, user)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
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
	user, err := h.service.UpdateUser(r.Context(), id, req.Username, req.Password)
	if err != nil {
		h.logIfInternal("update user failed", err)
		httpx.RespondError(w, err, "Failed to update User")
		return
	}
	httpx.OK(w, user)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err, "")
		return
	}
	var actorID int64
	if p := shared.PrincipalFromContext(r.Context()); p != nil {
		actorID = p.UserID
	}
	if err := h.service.DeleteUser(r.Context(), actorID, id); err != nil {
		h.logIfInternal("delete user failed", err)
		httpx.RespondError(w, err, "Failed to delete User")
		return
	}
	httpx.Message(w, "User berhasil dihapus")
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
