// Package httptransport builds the process router: the shared middleware
// stack, CORS, the health and metrics endpoints and every module's routes.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"leadhub/internal/platform/middleware"
)

// Registrar mounts one module's routes.
type Registrar interface {
	Register(r chi.Router)
}

// Deps is everything the router serves.
type Deps struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	// Gatherer backs /metrics. Nil serves the default registry.
	Gatherer prometheus.Gatherer
	Checks   map[string]Probe
	// RateLimit wraps every route after CORS. Nil applies no limit.
	RateLimit func(http.Handler) http.Handler
	Modules   []Registrar
}

// NewRouter wires the public endpoints. Module handlers bring their own
// timeouts and latency middleware.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if d.RateLimit != nil {
		r.Use(d.RateLimit)
	}

	r.Get("/health", healthHandler(d.Checks))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	for _, m := range d.Modules {
		m.Register(r)
	}
	return r
}
