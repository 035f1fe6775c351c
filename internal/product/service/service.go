// Package service manages products and sources and answers the existence
// checks the lead and upload paths make before writing anything.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks ProductStore,SourceStore,LeadCounter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/ristretto/v2"

	"leadhub/internal/product/models"
	id "leadhub/pkg/domain"
	"leadhub/pkg/requestcontext"
)

type ProductStore interface {
	Save(ctx context.Context, product *models.Product) error
	FindByPID(ctx context.Context, pID id.ProductID) (*models.Product, error)
	ExistsByPID(ctx context.Context, pID id.ProductID) (bool, error)
	FindAll(ctx context.Context) ([]*models.Product, error)
	Delete(ctx context.Context, pID id.ProductID) error
}

type SourceStore interface {
	Save(ctx context.Context, source *models.Source) error
	FindByID(ctx context.Context, sourceID id.SourceID) (*models.Source, error)
	ExistsByID(ctx context.Context, sourceID id.SourceID) (bool, error)
	FindAll(ctx context.Context) ([]*models.Source, error)
	FindByPID(ctx context.Context, pID id.ProductID) ([]*models.Source, error)
	CountByPID(ctx context.Context, pID id.ProductID) (int, error)
	Delete(ctx context.Context, sourceID id.SourceID) error
}

// LeadCounter reports how many leads still point at a source.
type LeadCounter interface {
	CountBySourceID(ctx context.Context, sourceID id.SourceID) (int, error)
}

// Cache holds product lookups keyed by pId.
type Cache = ristretto.Cache[string, *models.Product]

// NewCache builds a product cache holding up to maxProducts entries.
func NewCache(maxProducts int64) (*Cache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, *models.Product]{
		NumCounters: maxProducts * 10,
		MaxCost:     maxProducts,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create product cache: %w", err)
	}
	return cache, nil
}

type Service struct {
	products ProductStore
	sources  SourceStore
	leads    LeadCounter
	cache    *Cache
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithCache caches product reads. Writes through the service invalidate it.
func WithCache(cache *Cache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

func New(products ProductStore, sources SourceStore, leads LeadCounter, opts ...Option) *Service {
	s := &Service{products: products, sources: sources, leads: leads}
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

func (s *Service) cached(pID id.ProductID) (*models.Product, bool) {
	if s.cache == nil {
		return nil, false
	}
	p, ok := s.cache.Get(string(pID))
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

func (s *Service) remember(p *models.Product) {
	if s.cache != nil {
		s.cache.Set(string(p.PID), p.Clone(), 1)
	}
}

func (s *Service) forget(pID id.ProductID) {
	if s.cache != nil {
		s.cache.Del(string(pID))
	}
}
