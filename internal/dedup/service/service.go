package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks LeadStore,ProductStore,SourceStore,FieldSource,RulesStore,Locker,EventPublisher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	cfmodels "leadhub/internal/canonicalfield/models"
	"leadhub/internal/dedup/lock"
	"leadhub/internal/dedup/metrics"
	"leadhub/internal/dedup/models"
	leadmodels "leadhub/internal/lead/models"
	productmodels "leadhub/internal/product/models"
	id "leadhub/pkg/domain"
	dErrors "leadhub/pkg/domain-errors"
	"leadhub/pkg/platform/events"
	"leadhub/pkg/platform/sentinel"
	"leadhub/pkg/platform/tx"
	"leadhub/pkg/requestcontext"
)

const defaultLockTTL = 5 * time.Minute

// Run scopes, used for metrics labels, span names and event payloads.
const (
	scopeAll           = "all"
	scopeProduct       = "product"
	scopeAllProducts   = "all_products"
	scopeCanonical     = "canonical"
	scopeConsolidation = "consolidation"
)

// LeadStore is the lead persistence a dedup run reads and rewrites.
type LeadStore interface {
	FindAll(ctx context.Context) ([]*leadmodels.Lead, error)
	FindByPID(ctx context.Context, pID id.ProductID) ([]*leadmodels.Lead, error)
	Count(ctx context.Context) (int, error)
	Save(ctx context.Context, lead *leadmodels.Lead) error
	Delete(ctx context.Context, leadID id.LeadID) error
}

// ProductStore resolves per-product policies and is rewritten by consolidation.
type ProductStore interface {
	FindByPID(ctx context.Context, pID id.ProductID) (*productmodels.Product, error)
	FindAll(ctx context.Context) ([]*productmodels.Product, error)
	Save(ctx context.Context, product *productmodels.Product) error
	Delete(ctx context.Context, pID id.ProductID) error
}

// SourceStore is re-pointed when duplicate products are consolidated.
type SourceStore interface {
	FindByPID(ctx context.Context, pID id.ProductID) ([]*productmodels.Source, error)
	Save(ctx context.Context, source *productmodels.Source) error
}

// FieldSource lists the canonical fields that drive a canonical-field run.
type FieldSource interface {
	FindActive(ctx context.Context) ([]*cfmodels.CanonicalField, error)
}

// RulesStore holds the default identity policy.
type RulesStore interface {
	Get(ctx context.Context) (models.Config, error)
	Put(ctx context.Context, cfg models.Config) error
}

// Locker serializes runs. Acquire reports sentinel.ErrLocked while held.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (lock.Handle, error)
	Release(ctx context.Context, h lock.Handle) error
}

// TxRunner runs a merge atomically.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher emits dedup events.
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event) error
}

// CacheInvalidator drops cached copies of a product after it changes.
type CacheInvalidator interface {
	Invalidate(pID id.ProductID)
}

// Service runs lead deduplication and product consolidation.
type Service struct {
	leads      LeadStore
	products   ProductStore
	sources    SourceStore
	fields     FieldSource
	rules      RulesStore
	locker     Locker
	tx         TxRunner
	publisher  EventPublisher
	invalidate CacheInvalidator
	metrics    *metrics.Metrics
	logger     *slog.Logger
	tracer     trace.Tracer
	lockTTL    time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithEventPublisher(publisher EventPublisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

// WithLocker replaces the process-local lock, typically with lock.Redis.
func WithLocker(locker Locker) Option {
	return func(s *Service) {
		s.locker = locker
	}
}

func WithLockTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

func WithTxRunner(runner TxRunner) Option {
	return func(s *Service) {
		s.tx = runner
	}
}

func WithCacheInvalidator(invalidator CacheInvalidator) Option {
	return func(s *Service) {
		s.invalidate = invalidator
	}
}

// New constructs a Service. Without options it uses a process-local lock
// and runs merges without a transaction.
func New(leads LeadStore, products ProductStore, sources SourceStore, fields FieldSource, rules RulesStore, opts ...Option) *Service {
	s := &Service{
		leads:    leads,
		products: products,
		sources:  sources,
		fields:   fields,
		rules:    rules,
		locker:   lock.NewMemory(),
		tx:       tx.Passthrough{},
		tracer:   otel.Tracer("leadhub.dedup"),
		lockTTL:  defaultLockTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// withLock runs fn while holding the dedup lock.
func (s *Service) withLock(ctx context.Context, fn func(ctx context.Context) error) error {
	h, err := s.locker.Acquire(ctx, lock.DedupKey, s.lockTTL)
	if errors.Is(err, sentinel.ErrLocked) {
		if s.metrics != nil {
			s.metrics.IncrementLockContention()
		}
		return dErrors.New(dErrors.CodeConflict, "A deduplication run is already in progress")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to acquire deduplication lock")
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), h); err != nil {
			s.logger.WarnContext(ctx, "failed to release deduplication lock", "error", err)
		}
	}()
	return fn(ctx)
}

// finish records the outcome of a run on its span and in metrics.
func (s *Service) finish(span trace.Span, scope string, start time.Time, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.metrics != nil {
		s.metrics.ObserveRun(scope, start, err)
	}
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}

// emit publishes an event. Publish failures are logged and never fail a run.
func (s *Service) emit(ctx context.Context, typ events.Type, key string, payload map[string]any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Emit(ctx, events.New(ctx, typ, key, payload)); err != nil {
		s.logger.WarnContext(ctx, "failed to publish dedup event",
			"event_type", string(typ),
			"key", key,
			"error", err,
		)
	}
}

func (s *Service) forgetProduct(pID id.ProductID) {
	if s.invalidate != nil {
		s.invalidate.Invalidate(pID)
	}
}
