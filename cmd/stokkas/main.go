package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/stokkas/stokkas/internal/app"
	"github.com/stokkas/stokkas/internal/auth"
	"github.com/stokkas/stokkas/internal/catalog"
	"github.com/stokkas/stokkas/internal/customers"
	"github.com/stokkas/stokkas/internal/dashboard"
	"github.com/stokkas/stokkas/internal/inventory"
	"github.com/stokkas/stokkas/internal/observability"
	"github.com/stokkas/stokkas/internal/orders"
	"github.com/stokkas/stokkas/internal/platform/cache"
	"github.com/stokkas/stokkas/internal/platform/db"
	"github.com/stokkas/stokkas/internal/reports"
	"github.com/stokkas/stokkas/internal/shared"
	"github.com/stokkas/stokkas/internal/users"
	"github.com/stokkas/stokkas/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer dbpool.Close()

	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, dbpool); err != nil {
			return err
		}
		logger.Info("schema applied")
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	loc := cfg.Location()
	metrics := observability.NewMetrics()
	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	idempotencyStore := shared.NewIdempotencyStore(dbpool)

	authService := auth.NewService(auth.NewRepository(dbpool))
	usersService := users.NewService(users.NewRepository(dbpool))
	catalogService := catalog.NewService(catalog.NewRepository(dbpool))
	inventoryService := inventory.NewService(inventory.NewRepository(dbpool), metrics)
	customersService := customers.NewService(customers.NewRepository(dbpool))
	ordersService := orders.NewService(orders.NewRepository(dbpool), idempotencyStore, metrics, logger)
	reportsService := reports.NewService(inventoryService, ordersService, catalogService, loc)
	dashboardService := dashboard.NewService(dashboard.NewRepository(dbpool), ordersService, inventoryService, loc)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		Metrics:          metrics,
		AuthHandler:      auth.NewHandler(logger, authService, sessionManager),
		UsersHandler:     users.NewHandler(logger, usersService),
		CatalogHandler:   catalog.NewHandler(logger, catalogService),
		InventoryHandler: inventory.NewHandler(logger, inventoryService, loc),
		CustomersHandler: customers.NewHandler(logger, customersService),
		OrdersHandler:    orders.NewHandler(logger, ordersService, loc),
		ReportsHandler:   reports.NewHandler(logger, reportsService),
		DashboardHandler: dashboard.NewHandler(logger, dashboardService),
		JobHandler:       jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("timezone", loc.String()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
