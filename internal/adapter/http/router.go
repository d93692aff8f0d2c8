package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/iho/axiompay/internal/adapter/http/handler"
	"github.com/iho/axiompay/internal/adapter/http/middleware"
	"github.com/iho/axiompay/internal/usecase"
)

// Metrics is the set of HTTP level hooks the router records into.
type Metrics interface {
	middleware.HTTPMetrics
	middleware.ReplayCounter
}

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	SubscriptionHandler *handler.SubscriptionHandler
	BalanceHandler      *handler.BalanceHandler
	HealthHandler       *handler.HealthHandler

	IdempotencyStore usecase.IdempotencyStore // optional
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter // optional

	Metrics        Metrics      // optional
	MetricsHandler http.Handler // optional, served at /metrics

	CORSAllowedOrigins []string
	Logger             zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.IdempotencyKeyHeader},
		ExposedHeaders: []string{middleware.IdempotencyReplayHeader, chimiddleware.RequestIDHeader},
		MaxAge:         300,
	}).Handler)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	r.Use(middleware.Recovery(cfg.Logger))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handler.WriteError(w, http.StatusNotFound, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handler.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}

		r.Group(func(r chi.Router) {
			// Idempotency middleware for mutating requests
			if cfg.IdempotencyStore != nil {
				var replays middleware.ReplayCounter
				if cfg.Metrics != nil {
					replays = cfg.Metrics
				}
				r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, replays, cfg.Logger).Wrap)
			}

			r.Post("/subscribe", cfg.SubscriptionHandler.Create)
		})

		r.Get("/balance/{accountId}", cfg.BalanceHandler.Get)
	})

	return r
}
