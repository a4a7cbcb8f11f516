package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tgiffonirs/gomarketplace/internal/cart"
	"github.com/tgiffonirs/gomarketplace/pkg/health"
	"github.com/tgiffonirs/gomarketplace/pkg/middleware"
)

const serviceName = "cart"

// RouterConfig carries the HTTP-only settings.
type RouterConfig struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
	// RateLimit applies to the cart routes. A zero RPS disables it.
	RateLimit middleware.RateLimitConfig
}

// NewRouter builds the chi router with health, metrics and cart routes.
func NewRouter(store *cart.Store, healthHandler *health.Handler, logger *slog.Logger, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	}
	r.Use(chimw.Compress(5))
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(logger))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	h := NewCartHandler(logger)

	r.Route("/api/v1/cart", func(r chi.Router) {
		if cfg.RateLimit.RPS > 0 {
			r.Use(middleware.RateLimit(cfg.RateLimit, logger))
		}
		r.Use(ContentTypeJSON)
		r.Use(StoreScope(store))

		r.Get("/", h.GetCart)
		r.Post("/items", h.AddToCart)
		r.Post("/items/{id}/increment", h.Increment)
		r.Post("/items/{id}/decrement", h.Decrement)
	})

	return r
}
