package router

import (
	"log"
	"net/http"

	"github.com/boba-pos/api/internal/config"
	"github.com/boba-pos/api/internal/database"
	"github.com/boba-pos/api/internal/enum"
	"github.com/boba-pos/api/internal/events"
	"github.com/boba-pos/api/internal/handler"
	"github.com/boba-pos/api/internal/metrics"
	mw "github.com/boba-pos/api/internal/middleware"
	"github.com/boba-pos/api/internal/service"
	"github.com/boba-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps carries the collaborators built in main that the services share.
// Every field is optional.
type Deps struct {
	Notifier service.Notifier
	Events   events.Publisher
	Metrics  *metrics.Registry
}

// New creates a Chi router with all application routes wired up.
// Kiosk and menu-board routes are public; staff routes require a token and
// reports, inventory and pricing require the MANAGER role.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub, deps Deps) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	// Services
	orderService := service.NewOrderService(pool,
		func(db database.DBTX) service.OrderStore { return database.New(db) },
		service.OrderConfig{
			PricePolicy: cfg.PricePolicy,
			Notifier:    deps.Notifier,
			Events:      deps.Events,
			Metrics:     deps.Metrics,
		})
	reportService := service.NewReportService(pool, queries,
		func(db database.DBTX) service.ReportStore { return database.New(db) },
		service.ReportConfig{
			Location: cfg.Location(),
			Events:   deps.Events,
			Metrics:  deps.Metrics,
		})

	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	menuHandler := handler.NewMenuHandler(queries)
	orderHandler := handler.NewOrderHandler(orderService, queries)
	restockService := service.NewRestockService(pool,
		func(db database.DBTX) service.RestockStore { return database.New(db) },
		deps.Events, deps.Metrics)
	inventoryHandler := handler.NewInventoryHandler(queries, restockService)
	reportsHandler := handler.NewReportsHandler(reportService, cfg.Location())

	// Auth, menu board and kiosk (public)
	authHandler.RegisterRoutes(r)
	menuHandler.RegisterRoutes(r)
	orderHandler.RegisterKioskRoutes(r)

	// WebSocket feeds; the manager feed checks its token itself
	r.Get("/ws/orders", ws.ServeOrders(hub))
	r.Get("/ws/reports", ws.ServeReports(hub, cfg.JWTSecret))

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Cashier station
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.EmployeeRoleCashier))
			orderHandler.RegisterRoutes(r)
		})

		// Manager only
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.EmployeeRoleManager))
			inventoryHandler.RegisterRoutes(r)
			menuHandler.RegisterManagerRoutes(r)
			reportsHandler.RegisterRoutes(r)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
