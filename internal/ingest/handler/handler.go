package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"leadhub/internal/ingest/models"
	"leadhub/internal/platform/metrics"
	"leadhub/internal/platform/middleware"
	dErrors "leadhub/pkg/domain-errors"
	"leadhub/pkg/platform/httputil"
)

const (
	maxUploadBytes = 10 << 20
	uploadTimeout  = 5 * time.Minute
)

// Service is the upload behaviour the HTTP layer needs.
type Service interface {
	Upload(ctx context.Context, up models.Upload) (*models.Result, error)
}

// Handler serves POST /api/leads/upload.
type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(service Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{service: service, logger: logger, metrics: m}
}

// Register adds the upload route to r.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(uploadTimeout))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.LatencyMiddleware(h.metrics))

		r.Post("/api/leads/upload", h.handleUpload)
	})
}

type rejectedResponse struct {
	httputil.ErrorResponse
	FailedRows []models.RowError `json:"failedRows,omitempty"`
}

// handleUpload accepts the file either as the multipart field "file" or as a
// raw text/csv body. The product and source come from the query string or
// the form, as pId/sourceId or p_id/source_id.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	body, closeBody, err := h.openFile(r)
	if err != nil {
		h.writeError(ctx, w, "failed to read upload", err)
		return
	}
	defer closeBody()

	table, err := models.ParseCSV(body)
	if err != nil {
		h.writeError(ctx, w, "failed to parse upload",
			dErrors.Wrap(err, dErrors.CodeBadRequest, "Failed to parse CSV or no valid rows found"))
		return
	}

	result, err := h.service.Upload(ctx, models.Upload{
		PID:      param(r, "pId", "p_id"),
		SourceID: param(r, "sourceId", "source_id"),
		Table:    table,
	})
	if err != nil {
		var rejected *models.RejectedError
		if errors.As(err, &rejected) {
			h.logger.WarnContext(ctx, "upload rejected",
				"request_id", middleware.GetRequestID(ctx),
				"reason", rejected.Message,
				"rows", len(rejected.Rows),
			)
			httputil.WriteJSON(w, http.StatusBadRequest, rejectedResponse{
				ErrorResponse: httputil.ErrorResponse{
					Error:            string(dErrors.CodeBadRequest),
					ErrorDescription: rejected.Message,
				},
				FailedRows: rejected.Rows,
			})
			return
		}
		h.writeError(ctx, w, "failed to upload leads", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) openFile(r *http.Request) (io.Reader, func(), error) {
	noop := func() {}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, noop, dErrors.Wrap(err, dErrors.CodeBadRequest, "File is required")
		}
		file, header, err := r.FormFile("file")
		if err != nil || header.Size == 0 {
			if file != nil {
				_ = file.Close()
			}
			return nil, noop, dErrors.New(dErrors.CodeBadRequest, "File is required")
		}
		return file, func() { _ = file.Close() }, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, noop, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read request body")
	}
	if len(data) == 0 {
		return nil, noop, dErrors.New(dErrors.CodeBadRequest, "File is required")
	}
	return bytes.NewReader(data), noop, nil
}

func param(r *http.Request, names ...string) string {
	for _, name := range names {
		if v := r.URL.Query().Get(name); v != "" {
			return v
		}
		if v := r.FormValue(name); v != "" {
			return v
		}
	}
	return ""
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
	httputil.WriteError(w, err)
}
