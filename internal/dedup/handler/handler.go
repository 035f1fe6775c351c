package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"leadhub/internal/dedup/models"
	"leadhub/internal/platform/metrics"
	"leadhub/internal/platform/middleware"
	productmodels "leadhub/internal/product/models"
	dErrors "leadhub/pkg/domain-errors"
	"leadhub/pkg/platform/httputil"
)

const maxBodyBytes = 1 << 16

// runTimeout bounds a dedup run started over HTTP. Runs read every lead, so
// they get far longer than CRUD requests.
const runTimeout = 5 * time.Minute

// Service is the dedup behaviour the HTTP layer needs.
type Service interface {
	Rules(ctx context.Context) (models.Config, error)
	UpdateRules(ctx context.Context, patch models.ConfigPatch) (models.Config, error)
	Execute(ctx context.Context, override *models.Config) (*models.Stats, error)
	ExecuteFromCanonicalFields(ctx context.Context) (*models.Stats, error)
	ExecuteForProduct(ctx context.Context, rawPID string) (*models.Stats, error)
	ExecuteForAllProducts(ctx context.Context) ([]models.ProductOutcome, error)
	Stats(ctx context.Context) (*models.StatsInfo, error)
	ProductConfig(ctx context.Context, rawPID string) (*models.ProductConfigView, error)
	UpdateProductConfig(ctx context.Context, rawPID string, names []string) (*productmodels.Product, error)
	PreviewProductDuplicates(ctx context.Context) ([][]models.ProductPreview, error)
	ConsolidateProducts(ctx context.Context) (*models.ConsolidationResult, error)
}

// Handler serves /api/deduplication.
type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(service Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{service: service, logger: logger, metrics: m}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/api/deduplication", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.LatencyMiddleware(h.metrics))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(10 * time.Second))
			r.Get("/rules", h.handleGetRules)
			r.Put("/rules", h.handleUpdateRules)
			r.Get("/stats", h.handleStats)
			r.Get("/products/preview", h.handlePreviewProducts)
			r.Get("/products/{pId}/config", h.handleGetProductConfig)
			r.Put("/products/{pId}/config", h.handleUpdateProductConfig)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(runTimeout))
			r.Post("/execute", h.handleExecute)
			r.Post("/execute/canonical", h.handleExecuteCanonical)
			r.Post("/execute/by-product", h.handleExecuteForProduct)
			r.Post("/execute/by-product/all", h.handleExecuteForAllProducts)
			r.Post("/products/execute", h.handleConsolidateProducts)
		})
	})
}

func (h *Handler) handleGetRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg, err := h.service.Rules(ctx)
	if err != nil {
		h.writeError(ctx, w, "failed to get dedup rules", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cfg)
}

func (h *Handler) handleUpdateRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patch, ok := httputil.DecodeAndPrepare[models.ConfigPatch](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	cfg, err := h.service.UpdateRules(ctx, *patch)
	if err != nil {
		h.writeError(ctx, w, "failed to update dedup rules", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cfg)
}

// handleExecute accepts an optional policy override. An absent or empty
// body runs with the stored rules.
func (h *Handler) handleExecute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var patch models.ConfigPatch
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&patch); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(ctx, w, "invalid dedup override", dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	var override *models.Config
	if !patch.IsEmpty() {
		cfg := patch.Config()
		override = &cfg
	}
	stats, err := h.service.Execute(ctx, override)
	if err != nil {
		h.writeError(ctx, w, "failed to execute deduplication", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleExecuteCanonical(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.service.ExecuteFromCanonicalFields(ctx)
	if err != nil {
		h.writeError(ctx, w, "failed to execute canonical deduplication", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleExecuteForProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.service.ExecuteForProduct(ctx, r.URL.Query().Get("productId"))
	if err != nil {
		h.writeError(ctx, w, "failed to execute product deduplication", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleExecuteForAllProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	outcomes, err := h.service.ExecuteForAllProducts(ctx)
	if err != nil {
		h.writeError(ctx, w, "failed to execute deduplication for all products", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"results": models.ByProduct(outcomes),
		"errors":  models.Failures(outcomes),
		"total":   len(outcomes),
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	info, err := h.service.Stats(ctx)
	if err != nil {
		h.writeError(ctx, w, "failed to get dedup stats", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, info)
}

func (h *Handler) handleGetProductConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.service.ProductConfig(ctx, chi.URLParam(r, "pId"))
	if err != nil {
		h.writeError(ctx, w, "failed to get product dedup config", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleUpdateProductConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.ProductConfigRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	product, err := h.service.UpdateProductConfig(ctx, chi.URLParam(r, "pId"), req.Fields())
	if err != nil {
		h.writeError(ctx, w, "failed to update product dedup config", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, product)
}

func (h *Handler) handlePreviewProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	groups, err := h.service.PreviewProductDuplicates(ctx)
	if err != nil {
		h.writeError(ctx, w, "failed to preview product duplicates", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"groups": groups, "total": len(groups)})
}

func (h *Handler) handleConsolidateProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := h.service.ConsolidateProducts(ctx)
	if err != nil {
		h.writeError(ctx, w, "failed to consolidate products", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
	httputil.WriteError(w, err)
}
