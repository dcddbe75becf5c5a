package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stokkas/stokkas/internal/platform/httpx"
	"github.com/stokkas/stokkas/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		validator:      httpx.NewValidator(),
	}
}

// MountPublicRoutes registers routes reachable without a session.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/register", h.handleRegister)
	r.Get("/logout", h.handleLogout)
}

// MountRoutes registers routes that need a verified principal.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/profile", h.handleProfile)
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err, "")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ValidationError(err), "")
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			h.logger.Error("authenticate", slog.Any("error", err))
		}
		httpx.RespondError(w, err, "Login gagal")
		return
	}

	principal, err := h.sessionManager.Issue(w, user.ID)
	if err != nil {
		h.logger.Error("issue session", slog.Any("error", err))
		httpx.RespondError(w, err, "Login gagal")
		return
	}
	if err := h.service.RegisterSession(r.Context(), principal.SessionID, user.ID, principal.ExpiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}
	h.logger.Info("login", slog.Int64("user_id", user.ID))
	httpx.Message(w, "Login sukses")
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err, "")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ValidationError(err), "")
		return
	}
	user, err := h.service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if httpx.StatusFor(err) == http.StatusInternalServerError {
			h.logger.Error("register", slog.Any("error", err))
		}
		httpx.RespondError(w, err, "Registrasi gagal")
		return
	}
	httpx.JSON(w, http.StatusCreated, httpx.Result{Success: true, Data: user, Message: "user berhasil dibuat!"})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal != nil {
		if err := h.service.RemoveSession(r.Context(), principal.SessionID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
	}
	if err := h.sessionManager.Revoke(r.Context(), w, principal); err != nil {
		h.logger.Warn("revoke session", slog.Any("error", err))
	}
	httpx.Message(w, "Logout sukses")
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, shared.ErrAuthRequired, "")
		return
	}
	user, err := h.service.Profile(r.Context(), principal.UserID)
	if err != nil {
		if httpx.StatusFor(err) == http.StatusInternalServerError {
			h.logger.Error("load profile", slog.Any("error", err))
		}
		httpx.RespondError(w, err, "Gagal memuat profil")
		return
	}
	httpx.OK(w, user)
}
