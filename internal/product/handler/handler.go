package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"leadhub/internal/platform/metrics"
	"leadhub/internal/platform/middleware"
	"leadhub/internal/product/models"
	id "leadhub/pkg/domain"
	"leadhub/pkg/platform/httputil"
)

// Service is the product and source behaviour the HTTP layer needs.
type Service interface {
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	GetProduct(ctx context.Context, pID id.ProductID) (*models.Product, error)
	ListProducts(ctx context.Context) ([]*models.Product, error)
	UpdateProduct(ctx context.Context, pID id.ProductID, req *models.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, pID id.ProductID) error

	CreateSource(ctx context.Context, req *models.CreateSourceRequest) (*models.Source, error)
	GetSource(ctx context.Context, sourceID id.SourceID) (*models.Source, error)
	ListSources(ctx context.Context, pID id.ProductID) ([]*models.Source, error)
	UpdateSource(ctx context.Context, sourceID id.SourceID, req *models.UpdateSourceRequest) (*models.Source, error)
	DeleteSource(ctx context.Context, sourceID id.SourceID) error
}

// Handler serves /api/products and /api/sources.
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

		r.Post("/api/products", h.handleCreateProduct)
		r.Get("/api/products", h.handleListProducts)
		r.Get("/api/products/{pId}", h.handleGetProduct)
		r.Put("/api/products/{pId}", h.handleUpdateProduct)
		r.Delete("/api/products/{pId}", h.handleDeleteProduct)

		r.Post("/api/sources", h.handleCreateSource)
		r.Get("/api/sources", h.handleListSources)
		r.Get("/api/sources/{sourceId}", h.handleGetSource)
		r.Put("/api/sources/{sourceId}", h.handleUpdateSource)
		r.Delete("/api/sources/{sourceId}", h.handleDeleteSource)
	})
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.CreateProductRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	product, err := h.service.CreateProduct(ctx, req)
	if err != nil {
		h.writeError(ctx, w, "failed to create product", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, product)
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	products, err := h.service.ListProducts(ctx)
	if err != nil {
		h.writeError(ctx, w, "failed to list products", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"products": products, "total": len(products)})
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pID, ok := productID(w, r)
	if !ok {
		return
	}
	product, err := h.service.GetProduct(ctx, pID)
	if err != nil {
		h.writeError(ctx, w, "failed to get product", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, product)
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pID, ok := productID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UpdateProductRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	product, err := h.service.UpdateProduct(ctx, pID, req)
	if err != nil {
		h.writeError(ctx, w, "failed to update product", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, product)
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pID, ok := productID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteProduct(ctx, pID); err != nil {
		h.writeError(ctx, w, "failed to delete product", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

func (h *Handler) handleCreateSource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.CreateSourceRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	source, err := h.service.CreateSource(ctx, req)
	if err != nil {
		h.writeError(ctx, w, "failed to create source", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, source)
}

func (h *Handler) handleListSources(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var pID id.ProductID
	if raw := r.URL.Query().Get("pId"); raw != "" {
		parsed, err := id.ParseProductID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		pID = parsed
	}
	sources, err := h.service.ListSources(ctx, pID)
	if err != nil {
		h.writeError(ctx, w, "failed to list sources", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"sources": sources, "total": len(sources)})
}

func (h *Handler) handleGetSource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sourceID, ok := sourceID(w, r)
	if !ok {
		return
	}
	source, err := h.service.GetSource(ctx, sourceID)
	if err != nil {
		h.writeError(ctx, w, "failed to get source", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, source)
}

func (h *Handler) handleUpdateSource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sourceID, ok := sourceID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UpdateSourceRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	source, err := h.service.UpdateSource(ctx, sourceID, req)
	if err != nil {
		h.writeError(ctx, w, "failed to update source", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, source)
}

func (h *Handler) handleDeleteSource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sourceID, ok := sourceID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteSource(ctx, sourceID); err != nil {
		h.writeError(ctx, w, "failed to delete source", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Source deleted successfully"})
}

func productID(w http.ResponseWriter, r *http.Request) (id.ProductID, bool) {
	pID, err := id.ParseProductID(chi.URLParam(r, "pId"))
	if err != nil {
		httputil.WriteError(w, err)
		return "", false
	}
	return pID, true
}

func sourceID(w http.ResponseWriter, r *http.Request) (id.SourceID, bool) {
	sourceID, err := id.ParseSourceID(chi.URLParam(r, "sourceId"))
	if err != nil {
		httputil.WriteError(w, err)
		return "", false
	}
	return sourceID, true
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
	httputil.WriteError(w, err)
}
