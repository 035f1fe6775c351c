package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadhub/internal/ratelimit/metrics"
	"leadhub/internal/ratelimit/models"
	"leadhub/internal/ratelimit/store"
	"leadhub/pkg/requestcontext"
)

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (*models.RateLimitResult, error) {
	return nil, errors.New("redis down")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serve(h http.Handler, method, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req = req.WithContext(requestcontext.WithClientIP(req.Context(), ip))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestClassify(t *testing.T) {
	cases := []struct {
		method  string
		path    string
		class   models.EndpointClass
		limited bool
	}{
		{http.MethodPost, "/api/leads/upload", models.ClassUpload, true},
		{http.MethodPost, "/api/deduplication/execute", models.ClassRun, true},
		{http.MethodPost, "/api/deduplication/execute/by-product/all", models.ClassRun, true},
		{http.MethodPost, "/api/deduplication/products/execute", models.ClassRun, true},
		{http.MethodGet, "/api/leads", models.ClassRead, true},
		{http.MethodPut, "/api/leads/abc", models.ClassWrite, true},
		{http.MethodDelete, "/api/leads/abc/", models.ClassWrite, true},
		{http.MethodGet, "/health", "", false},
		{http.MethodGet, "/metrics", "", false},
		{http.MethodOptions, "/api/leads", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			class, limited := Classify(httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, tc.limited, limited)
			assert.Equal(t, tc.class, class)
		})
	}
}

func TestHandler(t *testing.T) {
	t.Run("rejects the request over the limit", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m := metrics.NewWith(reg)
		h := New(store.NewInMemory(), discardLogger(),
			WithLimits(map[models.EndpointClass]models.Limit{
				models.ClassUpload: {Requests: 2, Window: time.Minute},
			}),
			WithMetrics(m),
		).Handler(ok)

		for range 2 {
			rec := serve(h, http.MethodPost, "/api/leads/upload", "10.0.0.1")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		}

		rec := serve(h, http.MethodPost, "/api/leads/upload", "10.0.0.1")
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))

		var body models.RateLimitExceededResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "rate_limit_exceeded", body.Error)
		assert.Positive(t, body.RetryAfter)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejected.WithLabelValues("upload")))

		assert.Equal(t, http.StatusOK, serve(h, http.MethodPost, "/api/leads/upload", "10.0.0.2").Code,
			"another client has its own window")
		assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/api/leads", "10.0.0.1").Code,
			"reads have their own window")
	})

	t.Run("health is never limited", func(t *testing.T) {
		h := New(store.NewInMemory(), discardLogger(),
			WithLimits(map[models.EndpointClass]models.Limit{
				models.ClassRead: {Requests: 1, Window: time.Minute},
			}),
		).Handler(ok)
		for range 3 {
			rec := serve(h, http.MethodGet, "/health", "10.0.0.1")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
		}
	})

	t.Run("store failure lets the request through", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m := metrics.NewWith(reg)
		h := New(failingStore{}, discardLogger(), WithMetrics(m)).Handler(ok)

		rec := serve(h, http.MethodPost, "/api/leads/upload", "10.0.0.1")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreErrors))
	})

	t.Run("disabled passes everything", func(t *testing.T) {
		h := New(failingStore{}, discardLogger(), WithDisabled(true)).Handler(ok)
		rec := serve(h, http.MethodPost, "/api/leads/upload", "10.0.0.1")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	})
}
