package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"leadhub/internal/lead/models"
	"leadhub/internal/lead/scoring"
	"leadhub/internal/platform/metrics"
	"leadhub/internal/platform/middleware"
	id "leadhub/pkg/domain"
	"leadhub/pkg/platform/httputil"
)

// Service is the lead behaviour the HTTP layer needs.
type Service interface {
	Create(ctx context.Context, req *models.CreateLeadRequest) (*models.UpsertResult, error)
	Get(ctx context.Context, leadID id.LeadID) (*models.Lead, error)
	List(ctx context.Context, filter models.ListFilter) (*models.Page, error)
	Update(ctx context.Context, leadID id.LeadID, patch models.LeadPatch) (*models.Lead, error)
	Delete(ctx context.Context, leadID id.LeadID) error
	History(ctx context.Context, leadID id.LeadID) (*models.HistoryResponse, error)
	Score(ctx context.Context, leadID id.LeadID) (*models.Lead, scoring.Result, error)
}

// Handler serves /api/leads.
type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(service Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{service: service, logger: logger, metrics: m}
}

// Register adds the lead routes to r.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.LatencyMiddleware(h.metrics))

		r.Post("/api/leads", h.handleCreate)
		r.Get("/api/leads", h.handleList)
		r.Get("/api/leads/{id}", h.handleGet)
		r.Put("/api/leads/{id}", h.handleUpdate)
		r.Delete("/api/leads/{id}", h.handleDelete)
		r.Get("/api/leads/{id}/history", h.handleHistory)
		r.Post("/api/leads/{id}/score", h.handleScore)
	})
}

type scoreResponse struct {
	LeadID      string                    `json:"lead_id"`
	LeadScore   float64                   `json:"lead_score"`
	ScoreReason string                    `json:"score_reason"`
	Breakdown   map[string]scoring.Factor `json:"breakdown"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.CreateLeadRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	result, err := h.service.Create(ctx, req)
	if err != nil {
		h.writeError(ctx, w, "failed to create lead", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	filter := models.ListFilter{
		Page:  atoiDefault(q.Get("page"), 1),
		Limit: atoiDefault(q.Get("limit"), 20),
	}
	if raw := q.Get("pId"); raw != "" {
		pID, err := id.ParseProductID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.PID = pID
	}
	if raw := q.Get("sourceId"); raw != "" {
		sourceID, err := id.ParseSourceID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.SourceID = sourceID
	}

	page, err := h.service.List(ctx, filter)
	if err != nil {
		h.writeError(ctx, w, "failed to list leads", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	leadID, ok := h.leadID(w, r)
	if !ok {
		return
	}
	lead, err := h.service.Get(ctx, leadID)
	if err != nil {
		h.writeError(ctx, w, "failed to get lead", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, lead)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	leadID, ok := h.leadID(w, r)
	if !ok {
		return
	}
	patch, ok := httputil.DecodeAndPrepare[models.LeadPatch](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	lead, err := h.service.Update(ctx, leadID, *patch)
	if err != nil {
		h.writeError(ctx, w, "failed to update lead", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, lead)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	leadID, ok := h.leadID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(ctx, leadID); err != nil {
		h.writeError(ctx, w, "failed to delete lead", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Lead deleted successfully"})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	leadID, ok := h.leadID(w, r)
	if !ok {
		return
	}
	history, err := h.service.History(ctx, leadID)
	if err != nil {
		h.writeError(ctx, w, "failed to get lead history", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, history)
}

func (h *Handler) handleScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	leadID, ok := h.leadID(w, r)
	if !ok {
		return
	}
	lead, result, err := h.service.Score(ctx, leadID)
	if err != nil {
		h.writeError(ctx, w, "failed to score lead", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, scoreResponse{
		LeadID:      lead.LeadID.String(),
		LeadScore:   result.Score,
		ScoreReason: result.Reason,
		Breakdown:   result.Breakdown,
	})
}

func (h *Handler) leadID(w http.ResponseWriter, r *http.Request) (id.LeadID, bool) {
	leadID, err := id.ParseLeadID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.LeadID{}, false
	}
	return leadID, true
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
	httputil.WriteError(w, err)
}

func atoiDefault(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
