package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	cfmodels "leadhub/internal/canonicalfield/models"
	"leadhub/internal/canonicalfield/validator"
	"leadhub/internal/dedup/queue"
	"leadhub/internal/identity"
	"leadhub/internal/ingest/models"
	leadmodels "leadhub/internal/lead/models"
	id "leadhub/pkg/domain"
	dErrors "leadhub/pkg/domain-errors"
	"leadhub/pkg/platform/events"
	"leadhub/pkg/requestcontext"
)

const (
	noValidRows        = "Failed to parse CSV or no valid rows found"
	emptyFileReason    = "CSV file is empty or has no data rows"
	processingError    = "Processing error"
	dedupFailed        = "Deduplication failed"
	dedupEnqueueFailed = "Failed to queue deduplication"
)

type validRow struct {
	line int
	raw  map[string]string
	row  identity.Row
}

// Upload stores every valid row of up and then triggers deduplication. The
// product and source must exist before any row is read. A header that does
// not fit the active canonical fields, or a file without a single usable
// row, rejects the whole upload; otherwise bad rows are reported in the
// result and the rest are stored.
func (s *Service) Upload(ctx context.Context, up models.Upload) (*models.Result, error) {
	ctx, span := s.tracer.Start(ctx, "ingest.upload")
	defer span.End()

	result, err := s.upload(ctx, span, up)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return result, nil
}

func (s *Service) upload(ctx context.Context, span trace.Span, up models.Upload) (*models.Result, error) {
	pID, err := id.ParseProductID(up.PID)
	if err != nil {
		return nil, err
	}
	sourceID, err := id.ParseSourceID(up.SourceID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("leadhub.p_id", string(pID)),
		attribute.String("leadhub.source_id", string(sourceID)),
	)

	fields, err := s.precheck(ctx, pID, sourceID)
	if err != nil {
		return nil, err
	}

	if up.Table == nil || len(up.Table.Rows) == 0 {
		s.logger.WarnContext(ctx, "upload rejected: no data rows",
			"p_id", string(pID),
			"source_id", string(sourceID),
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, models.Reject(noValidRows, []models.RowError{models.NewRowError(1, map[string]string{}, emptyFileReason)})
	}

	schema := validator.NewSchema(fields)
	headers := up.Table.Headers
	if len(schema.Fields()) > 0 {
		problems := schema.ValidateFieldCount(headers)
		if len(problems) == 0 {
			problems = schema.ValidateHeaders(headers)
		}
		if len(problems) > 0 {
			s.logger.WarnContext(ctx, "upload rejected: header validation failed",
				"p_id", string(pID),
				"problems", problems,
				"request_id", requestcontext.RequestID(ctx),
			)
			return nil, models.Reject(noValidRows, []models.RowError{models.NewRowError(1, map[string]string{}, problems...)})
		}
	}

	mapping := identity.NormalizeHeaders(headers)
	result := &models.Result{TotalRows: len(up.Table.Rows), FailedRows: []models.RowError{}}
	var (
		valid   []validRow
		invalid []models.RowError
	)
	for _, rec := range up.Table.Rows {
		if problems := schema.ValidateRow(headers, rec.Values); len(problems) > 0 {
			invalid = append(invalid, models.NewRowError(rec.Line, rec.Values, problems...))
			continue
		}
		row := identity.NormalizeRow(rec.Values, mapping)
		if !row.HasAnyIdentifier() {
			reasons := append(row.Issues(), identity.MissingIdentifierReason)
			invalid = append(invalid, models.NewRowError(rec.Line, rec.Values, reasons...))
			continue
		}
		valid = append(valid, validRow{line: rec.Line, raw: rec.Values, row: row})
	}
	if len(valid) == 0 {
		s.logger.WarnContext(ctx, "upload rejected: no valid rows",
			"p_id", string(pID),
			"invalid_count", len(invalid),
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, models.Reject(noValidRows, invalid)
	}
	for _, rowErr := range invalid {
		result.Fail(rowErr)
	}

	for _, v := range valid {
		upserted, err := s.leads.Upsert(ctx, leadmodels.UpsertInput{
			Row:      v.row,
			PID:      pID,
			SourceID: sourceID,
			RawRow:   leadmodels.RawRow(v.raw),
		})
		if err != nil {
			reason := dErrors.Message(err)
			if reason == "" {
				reason = processingError
			}
			s.logger.ErrorContext(ctx, "row upsert failed",
				"row_number", v.line,
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			result.Fail(models.NewRowError(v.line, v.raw, reason))
			continue
		}
		switch upserted.Action {
		case leadmodels.ActionInserted:
			result.InsertedCount++
		case leadmodels.ActionMerged:
			result.MergedCount++
		}
	}

	s.logAudit(ctx, "leads_uploaded",
		"p_id", string(pID),
		"source_id", string(sourceID),
		"total_rows", result.TotalRows,
		"inserted_count", result.InsertedCount,
		"merged_count", result.MergedCount,
		"failed_count", result.FailedCount,
	)
	span.SetAttributes(
		attribute.Int("leadhub.inserted", result.InsertedCount),
		attribute.Int("leadhub.merged", result.MergedCount),
		attribute.Int("leadhub.failed", result.FailedCount),
	)

	s.deduplicate(ctx, pID, sourceID, result)
	s.emit(ctx, events.TypeUploadCompleted, string(pID), map[string]any{
		"pId":           string(pID),
		"sourceId":      string(sourceID),
		"totalRows":     result.TotalRows,
		"insertedCount": result.InsertedCount,
		"mergedCount":   result.MergedCount,
		"failedCount":   result.FailedCount,
	})
	return result, nil
}

// precheck confirms the product and source exist and loads the active
// canonical fields. The three lookups run concurrently; a missing product is
// reported ahead of a missing source.
func (s *Service) precheck(ctx context.Context, pID id.ProductID, sourceID id.SourceID) ([]*cfmodels.CanonicalField, error) {
	var (
		productOK, sourceOK bool
		fields              []*cfmodels.CanonicalField
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ok, err := s.catalog.ProductExists(gctx, pID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up product")
		}
		productOK = ok
		return nil
	})
	g.Go(func() error {
		ok, err := s.catalog.SourceExists(gctx, sourceID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up source")
		}
		sourceOK = ok
		return nil
	})
	g.Go(func() error {
		active, err := s.fields.FindActive(gctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load canonical fields")
		}
		fields = active
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if !productOK {
		return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("Product '%s' not found", pID))
	}
	if !sourceOK {
		return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("Source '%s' not found", sourceID))
	}
	return fields, nil
}

// deduplicate queues or runs the post-upload deduplication. Its failure
// never fails the upload; the result carries the error instead.
func (s *Service) deduplicate(ctx context.Context, pID id.ProductID, sourceID id.SourceID, result *models.Result) {
	switch {
	case s.queue != nil:
		err := s.queue.Enqueue(ctx, queue.Job{
			RequestID:  requestcontext.RequestID(ctx),
			PID:        pID,
			SourceID:   sourceID,
			EnqueuedAt: requestcontext.Now(ctx).UTC().Truncate(time.Millisecond),
		})
		if err != nil {
			s.logger.WarnContext(ctx, "failed to queue deduplication after upload",
				"p_id", string(pID),
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			result.DeduplicationError = dedupEnqueueFailed
			return
		}
		result.DeduplicationQueued = true
	case s.deduper != nil:
		summary, err := s.deduper.ExecuteAfterUpload(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "deduplication after upload failed",
				"p_id", string(pID),
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			result.DeduplicationError = dErrors.Message(err)
			if result.DeduplicationError == "" {
				result.DeduplicationError = dedupFailed
			}
			return
		}
		result.Deduplication = summary
	}
}
