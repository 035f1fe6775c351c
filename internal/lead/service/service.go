package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Catalog,EventPublisher

import (
	"context"
	"log/slog"

	"leadhub/internal/lead/metrics"
	"leadhub/internal/lead/models"
	id "leadhub/pkg/domain"
	"leadhub/pkg/platform/events"
	"leadhub/pkg/requestcontext"
)

// Store is the lead persistence the service needs.
type Store interface {
	Save(ctx context.Context, lead *models.Lead) error
	// Update applies fn to the stored lead as one atomic read-modify-write.
	Update(ctx context.Context, leadID id.LeadID, fn func(*models.Lead) error) (*models.Lead, error)
	Delete(ctx context.Context, leadID id.LeadID) error
	FindByLeadID(ctx context.Context, leadID id.LeadID) (*models.Lead, error)
	FindByEmail(ctx context.Context, email string) (*models.Lead, error)
	FindByPhone(ctx context.Context, phone string) (*models.Lead, error)
	FindByAadhar(ctx context.Context, aadhar string) (*models.Lead, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Lead, int, error)
}

// Catalog answers whether products and sources exist.
type Catalog interface {
	ProductExists(ctx context.Context, pID id.ProductID) (bool, error)
	SourceExists(ctx context.Context, sourceID id.SourceID) (bool, error)
}

// EventPublisher emits lead events.
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event) error
}

// Service owns the lead lifecycle: upsert on ingestion, API CRUD and scoring.
type Service struct {
	leads     Store
	catalog   Catalog
	logger    *slog.Logger
	publisher EventPublisher
	metrics   *metrics.Metrics
	newID     func() id.LeadID
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

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithIDGenerator overrides lead id generation. Tests use it for stable ids.
func WithIDGenerator(fn func() id.LeadID) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

// New constructs a Service.
func New(leads Store, catalog Catalog, opts ...Option) *Service {
	s := &Service{leads: leads, catalog: catalog, newID: id.NewLeadID}
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

// emit publishes an event. Publish failures are logged and never fail the
// operation that produced the event.
func (s *Service) emit(ctx context.Context, typ events.Type, key string, payload map[string]any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Emit(ctx, events.New(ctx, typ, key, payload)); err != nil {
		s.logger.WarnContext(ctx, "failed to publish lead event",
			"event_type", string(typ),
			"key", key,
			"error", err,
		)
	}
}

func (s *Service) incrementUpsert(action models.Action) {
	if s.metrics != nil {
		s.metrics.IncrementUpsert(string(action))
	}
}

func (s *Service) incrementDeleted() {
	if s.metrics != nil {
		s.metrics.IncrementDeleted()
	}
}

func (s *Service) incrementScored() {
	if s.metrics != nil {
		s.metrics.IncrementScored()
	}
}
