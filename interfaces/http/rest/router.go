package rest

import (
	"net/http"

	"linkscope-backend/application/commands/bus"
	querybus "linkscope-backend/application/queries/bus"
	"linkscope-backend/infrastructure/config"
	"linkscope-backend/interfaces/http/rest/handlers"
	"linkscope-backend/interfaces/http/rest/middleware"
	"linkscope-backend/interfaces/websocket"

	apperrors "linkscope-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router.
type Router struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	hub          *websocket.Hub
	cfg          *config.Config
	errorHandler *apperrors.ErrorHandler
	logger       *zap.Logger
}

// NewRouter creates a new router instance.
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	hub *websocket.Hub,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus:   commandBus,
		queryBus:     queryBus,
		hub:          hub,
		cfg:          cfg,
		errorHandler: apperrors.NewErrorHandler(logger, cfg.IsDevelopment()),
		logger:       logger,
	}
}

// Setup configures all routes and middleware.
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errorHandler.Middleware)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health checks
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	if rt.cfg.EnableMetrics {
		router.Handle("/metrics", promhttp.Handler())
	}

	// Frame stream subscription
	router.Get("/ws", websocket.ServeWS(rt.hub, rt.logger))

	// API routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/investigations", func(r chi.Router) {
			h := handlers.NewInvestigationHandler(rt.commandBus, rt.queryBus, rt.logger)
			r.Post("/", h.Start)
			r.Get("/", h.List)
			r.Route("/{investigationID}", func(r chi.Router) {
				r.Delete("/", h.Close)
				r.Post("/findings", h.IngestFindings)
				r.Post("/rebuild", h.Rebuild)
				r.Post("/pointer", h.Pointer)
				r.Post("/link-mode", h.LinkMode)
				r.Post("/viewport", h.Resize)
				r.Get("/frame", h.Frame)
				r.Get("/stats", h.Stats)
			})
		})
	})

	return router
}

// healthCheck handles health check requests.
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests. Sessions live in process,
// so the server is ready as soon as it accepts connections.
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
