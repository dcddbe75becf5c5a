package app

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/stokkas/stokkas/internal/observability"
	"github.com/stokkas/stokkas/internal/platform/httpx"
	"github.com/stokkas/stokkas/internal/shared"
)

// LoginPath is where anonymous page requests are sent.
const LoginPath = "/login"

// MiddlewareConfig aggregates dependencies shared by the middleware stack.
type MiddlewareConfig struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	Metrics        *observability.Metrics
}

// MiddlewareStack installs the global middleware chain.
func MiddlewareStack(cfg MiddlewareConfig) []func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'",
		SSLRedirect:           cfg.Config.IsProduction(),
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         !cfg.Config.IsProduction(),
	})

	timeout := 30 * time.Second
	if cfg.Config != nil && cfg.Config.AppRequestTimeout > 0 {
		timeout = cfg.Config.AppRequestTimeout
	}

	middlewares := []func(http.Handler) http.Handler{
		middleware.RealIP,
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Timeout(timeout),
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := secureMiddleware.Process(w, r); err != nil {
					logger.Warn("secure headers blocked request", slog.Any("error", err))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				next.ServeHTTP(w, r)
			})
		},
		middleware.Compress(5),
	}
	if cfg.Config != nil && cfg.Config.RateLimitPerMinute > 0 {
		middlewares = append(middlewares, httprate.Limit(cfg.Config.RateLimitPerMinute, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				httpx.Fail(w, http.StatusTooManyRequests, "Too many requests")
			}),
		))
	}
	if cfg.SessionManager != nil {
		middlewares = append(middlewares, PrincipalLoader(cfg.SessionManager, logger))
	}
	if cfg.Metrics != nil {
		middlewares = append(middlewares, cfg.Metrics.Middleware)
	}
	return middlewares
}

// PrincipalLoader verifies the session cookie and stores the principal in the
// request context. Invalid or revoked tokens make the request anonymous.
func PrincipalLoader(sessions *shared.SessionManager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := sessions.Load(r.Context(), r)
			if err != nil {
				if !errors.Is(err, shared.ErrSessionInvalid) {
					logger.Error("failed to load session", slog.Any("error", err))
					httpx.Fail(w, http.StatusInternalServerError, "Failed to verify session")
					return
				}
				principal = nil
			}
			if principal != nil {
				r = r.WithContext(shared.ContextWithPrincipal(r.Context(), principal))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects anonymous requests with a 401 envelope.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shared.PrincipalFromContext(r.Context()) == nil {
			httpx.RespondError(w, shared.ErrAuthRequired, "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PageGuard redirects page navigation by session state: anonymous visitors go
// to the login page and signed-in users are kept away from login/register.
// API, static, probe and job paths pass through untouched.
func PageGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if !isPagePath(path) {
			next.ServeHTTP(w, r)
			return
		}
		signedIn := shared.PrincipalFromContext(r.Context()) != nil
		authPage := path == LoginPath || path == "/register"
		switch {
		case !signedIn && !authPage:
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		case signedIn && authPage:
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isPagePath(path string) bool {
	for _, prefix := range []string{"/api/", "/static/", "/jobs/"} {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	switch path {
	case "/api", "/healthz", "/metrics", "/favicon.ico":
		return false
	}
	return true
}
