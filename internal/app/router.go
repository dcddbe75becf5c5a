package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/stokkas/stokkas/internal/auth"
	"github.com/stokkas/stokkas/internal/catalog"
	"github.com/stokkas/stokkas/internal/customers"
	"github.com/stokkas/stokkas/internal/dashboard"
	"github.com/stokkas/stokkas/internal/inventory"
	"github.com/stokkas/stokkas/internal/observability"
	"github.com/stokkas/stokkas/internal/orders"
	"github.com/stokkas/stokkas/internal/platform/httpx"
	"github.com/stokkas/stokkas/internal/reports"
	"github.com/stokkas/stokkas/internal/shared"
	"github.com/stokkas/stokkas/internal/users"
	"github.com/stokkas/stokkas/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	SessionManager   *shared.SessionManager
	Metrics          *observability.Metrics
	AuthHandler      *auth.Handler
	UsersHandler     *users.Handler
	CatalogHandler   *catalog.Handler
	InventoryHandler *inventory.Handler
	CustomersHandler *customers.Handler
	OrdersHandler    *orders.Handler
	ReportsHandler   *reports.Handler
	DashboardHandler *dashboard.Handler
	JobHandler       *jobs.Handler
}

// NewRouter constructs the chi.Router with the application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)
	r.Use(PageGuard)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.Message(w, "stokkas")
	})
	r.Get(LoginPath, func(w http.ResponseWriter, r *http.Request) {
		httpx.Message(w, "Silakan login")
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.AllowContentType("application/json"))

		if params.AuthHandler != nil {
			params.AuthHandler.MountPublicRoutes(r)
		}

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth)
			if params.AuthHandler != nil {
				params.AuthHandler.MountRoutes(r)
			}
			if params.UsersHandler != nil {
				r.Route("/admin", params.UsersHandler.MountRoutes)
			}
			r.Route("/barang", func(r chi.Router) {
				if params.InventoryHandler != nil {
					params.InventoryHandler.MountRoutes(r)
				}
				if params.CatalogHandler != nil {
					params.CatalogHandler.MountRoutes(r)
				}
			})
			if params.CustomersHandler != nil {
				r.Route("/customer", params.CustomersHandler.MountRoutes)
			}
			if params.OrdersHandler != nil {
				r.Route("/transaksi", params.OrdersHandler.MountRoutes)
			}
			if params.ReportsHandler != nil {
				r.Route("/laporan", params.ReportsHandler.MountRoutes)
			}
			if params.DashboardHandler != nil {
				r.Route("/dashboard", params.DashboardHandler.MountRoutes)
			}
		})
	})

	return r
}
