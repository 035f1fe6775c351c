// Package middleware applies per client, per endpoint class request limits.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"leadhub/internal/ratelimit/metrics"
	"leadhub/internal/ratelimit/models"
	"leadhub/pkg/platform/httputil"
	"leadhub/pkg/requestcontext"
)

const keyPrefix = "leadhub:ratelimit:"

// Store records a request against key and reports whether it fits the limit.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

// Middleware limits requests by client IP and endpoint class.
type Middleware struct {
	store    Store
	logger   *slog.Logger
	limits   map[models.EndpointClass]models.Limit
	metrics  *metrics.Metrics
	disabled bool
}

type Option func(*Middleware)

// WithLimits overrides the limit of the given classes. Classes missing from
// limits keep their default.
func WithLimits(limits map[models.EndpointClass]models.Limit) Option {
	return func(m *Middleware) {
		for class, l := range limits {
			if l.Requests > 0 && l.Window > 0 {
				m.limits[class] = l
			}
		}
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mt
	}
}

// WithDisabled turns the middleware into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func New(store Store, logger *slog.Logger, opts ...Option) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Middleware{
		store:  store,
		logger: logger,
		limits: models.DefaultLimits(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handler enforces the limit of the request's class. A store failure lets
// the request through.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	if m.disabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		class, limited := Classify(r)
		if !limited {
			next.ServeHTTP(w, r)
			return
		}
		limit := m.limits[class]
		ctx := r.Context()
		ip := requestcontext.ClientIP(ctx)
		if ip == "" {
			ip = "unknown"
		}

		result, err := m.store.Allow(ctx, keyPrefix+string(class)+":"+ip, limit.Requests, limit.Window)
		if err != nil {
			m.logger.ErrorContext(ctx, "rate limit check failed",
				"error", err,
				"class", class,
				"ip", ip,
			)
			if m.metrics != nil {
				m.metrics.IncrementStoreErrors()
			}
			next.ServeHTTP(w, r)
			return
		}

		addRateLimitHeaders(w, result)
		if !result.Allowed {
			m.logger.WarnContext(ctx, "rate limit exceeded",
				"class", class,
				"ip", ip,
				"request_id", requestcontext.RequestID(ctx),
			)
			if m.metrics != nil {
				m.metrics.IncrementRejected(string(class))
			}
			writeRateLimitExceeded(w, result)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Classify maps a request onto its endpoint class. Health and metrics
// scrapes are not limited.
func Classify(r *http.Request) (models.EndpointClass, bool) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == "/health" || path == "/metrics":
		return "", false
	case r.Method == http.MethodPost && path == "/api/leads/upload":
		return models.ClassUpload, true
	case r.Method == http.MethodPost && isRunPath(path):
		return models.ClassRun, true
	case r.Method == http.MethodGet || r.Method == http.MethodHead:
		return models.ClassRead, true
	case r.Method == http.MethodOptions:
		return "", false
	}
	return models.ClassWrite, true
}

func isRunPath(path string) bool {
	return strings.HasPrefix(path, "/api/deduplication/execute") ||
		path == "/api/deduplication/products/execute"
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, models.RateLimitExceededResponse{
		Error:      "rate_limit_exceeded",
		Message:    "Too many requests. Please try again later.",
		RetryAfter: result.RetryAfter,
	})
}
