// Package service turns an uploaded file into leads: it checks the target
// product and source, validates the file against the canonical schema,
// upserts every row and then triggers product-scoped deduplication.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks LeadUpserter,Catalog,FieldSource,Deduper,JobQueue,EventPublisher

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	cfmodels "leadhub/internal/canonicalfield/models"
	dedupmodels "leadhub/internal/dedup/models"
	"leadhub/internal/dedup/queue"
	leadmodels "leadhub/internal/lead/models"
	id "leadhub/pkg/domain"
	"leadhub/pkg/platform/events"
	"leadhub/pkg/requestcontext"
)

// LeadUpserter stores one normalized row.
type LeadUpserter interface {
	Upsert(ctx context.Context, in leadmodels.UpsertInput) (*leadmodels.UpsertResult, error)
}

// Catalog answers whether products and sources exist.
type Catalog interface {
	ProductExists(ctx context.Context, pID id.ProductID) (bool, error)
	SourceExists(ctx context.Context, sourceID id.SourceID) (bool, error)
}

// FieldSource lists the active canonical fields.
type FieldSource interface {
	FindActive(ctx context.Context) ([]*cfmodels.CanonicalField, error)
}

// Deduper runs the post-upload deduplication inline.
type Deduper interface {
	ExecuteAfterUpload(ctx context.Context) (*dedupmodels.Summary, error)
}

// JobQueue hands the post-upload deduplication to a worker.
type JobQueue interface {
	Enqueue(ctx context.Context, job queue.Job) error
}

type EventPublisher interface {
	Emit(ctx context.Context, event events.Event) error
}

type Service struct {
	leads     LeadUpserter
	catalog   Catalog
	fields    FieldSource
	deduper   Deduper
	queue     JobQueue
	logger    *slog.Logger
	publisher EventPublisher
	tracer    trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithEventPublisher(publisher EventPublisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

// WithDeduper runs deduplication inline after each upload.
func WithDeduper(d Deduper) Option {
	return func(s *Service) {
		s.deduper = d
	}
}

// WithJobQueue enqueues deduplication instead of running it inline. It
// takes precedence over WithDeduper.
func WithJobQueue(q JobQueue) Option {
	return func(s *Service) {
		s.queue = q
	}
}

func New(leads LeadUpserter, catalog Catalog, fields FieldSource, opts ...Option) *Service {
	s := &Service{
		leads:   leads,
		catalog: catalog,
		fields:  fields,
		tracer:  otel.Tracer("leadhub.ingest"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}

func (s *Service) emit(ctx context.Context, typ events.Type, key string, payload map[string]any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Emit(ctx, events.New(ctx, typ, key, payload)); err != nil {
		s.logger.WarnContext(ctx, "failed to publish upload event",
			"event_type", string(typ),
			"key", key,
			"error", err,
		)
	}
}
