package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"neurovault/application/commands/bus"
	querybus "neurovault/application/queries/bus"
	"neurovault/infrastructure/config"
	"neurovault/interfaces/http/rest/handlers"
	"neurovault/interfaces/http/rest/middleware"
	"neurovault/pkg/auth"
)

// Router creates and configures the HTTP router
type Router struct {
	commandBus  *bus.CommandBus
	queryBus    *querybus.QueryBus
	cfg         *config.Config
	userLimiter auth.RateLimiter
	logger      *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	cfg *config.Config,
	userLimiter auth.RateLimiter,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus:  commandBus,
		queryBus:    queryBus,
		cfg:         cfg,
		userLimiter: userLimiter,
		logger:      logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.cfg, rt.userLimiter))

		r.Route("/entries", func(r chi.Router) {
			entryHandler := handlers.NewEntryHandler(rt.commandBus, rt.queryBus, rt.logger)
			r.Post("/", entryHandler.IngestEntry)
			r.Get("/", entryHandler.ListEntries)
			r.Get("/{entryID}", entryHandler.GetEntry)
			r.Delete("/{entryID}", entryHandler.DeleteEntry)
			r.Get("/{entryID}/context", entryHandler.GetEntryContext)
		})

		r.Route("/synapses", func(r chi.Router) {
			synapseHandler := handlers.NewSynapseHandler(rt.commandBus, rt.queryBus, rt.logger)
			r.Post("/fire", synapseHandler.Fire)
			r.Post("/weaken", synapseHandler.Weaken)
			r.Get("/stats", synapseHandler.Stats)
			r.Get("/strongest", synapseHandler.Strongest)
		})

		r.Route("/memories", func(r chi.Router) {
			memoryHandler := handlers.NewMemoryHandler(rt.queryBus, rt.logger)
			r.Get("/", memoryHandler.ListMemories)
		})

		r.Route("/categories", func(r chi.Router) {
			categoryHandler := handlers.NewCategoryHandler(rt.queryBus, rt.logger)
			r.Get("/", categoryHandler.ListCategories)
		})

		r.Route("/maintenance", func(r chi.Router) {
			maintenanceHandler := handlers.NewMaintenanceHandler(rt.commandBus, rt.queryBus, rt.logger)
			r.Post("/cycles", maintenanceHandler.RunCycle)
			r.Get("/cycles", maintenanceHandler.ListCycles)
			r.Get("/cycles/{cycleID}", maintenanceHandler.GetCycle)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
