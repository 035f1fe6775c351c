package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"leadhub/internal/canonicalfield/models"
	"leadhub/internal/platform/metrics"
	"leadhub/internal/platform/middleware"
	"leadhub/pkg/platform/httputil"
)

// Service is the canonical field behaviour the HTTP layer needs.
type Service interface {
	Create(ctx context.Context, req *models.CreateRequest) (*models.CanonicalField, error)
	Get(ctx context.Context, name string) (*models.CanonicalField, error)
	List(ctx context.Context, activeOnly bool) ([]*models.CanonicalField, error)
}

// Handler serves /api/canonical-fields.
type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(service Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{service: service, logger: logger, metrics: m}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(10 * time.Second))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.LatencyMiddleware(h.metrics))

		r.Get("/api/canonical-fields", h.handleList)
		r.Post("/api/canonical-fields", h.handleCreate)
		r.Get("/api/canonical-fields/{name}", h.handleGet)
		r.Put("/api/canonical-fields/{name}", h.handleImmutable)
		r.Delete("/api/canonical-fields/{name}", h.handleImmutable)
		r.Patch("/api/canonical-fields/{name}/toggle", h.handleImmutable)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	activeOnly, _ := strconv.ParseBool(r.URL.Query().Get("is_active"))
	fields, err := h.service.List(ctx, activeOnly)
	if err != nil {
		h.writeError(ctx, w, "failed to list canonical fields", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"fields": fields, "total": len(fields)})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.CreateRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	field, err := h.service.Create(ctx, req)
	if err != nil {
		h.writeError(ctx, w, "failed to create canonical field", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, field)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	field, err := h.service.Get(ctx, chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(ctx, w, "failed to get canonical field", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, field)
}

func (h *Handler) handleImmutable(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusMethodNotAllowed, httputil.ErrorResponse{
		Error:            "method_not_allowed",
		ErrorDescription: "Canonical fields are immutable after creation",
	})
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
	httputil.WriteError(w, err)
}
