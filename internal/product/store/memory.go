// Package store persists products and sources.
package store

import (
	"context"
	"sync"

	"leadhub/internal/product/models"
	id "leadhub/pkg/domain"
	"leadhub/pkg/platform/sentinel"
)

// ProductMemory keeps products in creation order.
type ProductMemory struct {
	mu       sync.RWMutex
	products map[id.ProductID]*models.Product
	order    []id.ProductID
}

func NewProductMemory() *ProductMemory {
	return &ProductMemory{products: make(map[id.ProductID]*models.Product)}
}

// Save inserts or replaces the product with the same pId.
func (s *ProductMemory) Save(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[product.PID]; !ok {
		s.order = append(s.order, product.PID)
	}
	s.products[product.PID] = product.Clone()
	return nil
}

func (s *ProductMemory) FindByPID(_ context.Context, pID id.ProductID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[pID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

func (s *ProductMemory) ExistsByPID(_ context.Context, pID id.ProductID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.products[pID]
	return ok, nil
}

func (s *ProductMemory) FindAll(_ context.Context) ([]*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Product, 0, len(s.order))
	for _, pID := range s.order {
		out = append(out, s.products[pID].Clone())
	}
	return out, nil
}

func (s *ProductMemory) Delete(_ context.Context, pID id.ProductID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[pID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.products, pID)
	for i, existing := range s.order {
		if existing == pID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// SourceMemory keeps sources in creation order.
type SourceMemory struct {
	mu      sync.RWMutex
	sources map[id.SourceID]*models.Source
	order   []id.SourceID
}

func NewSourceMemory() *SourceMemory {
	return &SourceMemory{sources: make(map[id.SourceID]*models.Source)}
}

// Save inserts or replaces the source with the same sourceId.
func (s *SourceMemory) Save(_ context.Context, source *models.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sources[source.SourceID]; !ok {
		s.order = append(s.order, source.SourceID)
	}
	s.sources[source.SourceID] = source.Clone()
	return nil
}

func (s *SourceMemory) FindByID(_ context.Context, sourceID id.SourceID) (*models.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src, ok := s.sources[sourceID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return src.Clone(), nil
}

func (s *SourceMemory) ExistsByID(_ context.Context, sourceID id.SourceID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sources[sourceID]
	return ok, nil
}

func (s *SourceMemory) FindAll(_ context.Context) ([]*models.Source, error) {
	return s.collect(func(*models.Source) bool { return true }), nil
}

func (s *SourceMemory) FindByPID(_ context.Context, pID id.ProductID) ([]*models.Source, error) {
	return s.collect(func(src *models.Source) bool { return src.PID == pID }), nil
}

func (s *SourceMemory) CountByPID(_ context.Context, pID id.ProductID) (int, error) {
	return len(s.collect(func(src *models.Source) bool { return src.PID == pID })), nil
}

func (s *SourceMemory) Delete(_ context.Context, sourceID id.SourceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sources[sourceID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.sources, sourceID)
	for i, existing := range s.order {
		if existing == sourceID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *SourceMemory) collect(keep func(*models.Source) bool) []*models.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Source, 0, len(s.order))
	for _, sourceID := range s.order {
		if src := s.sources[sourceID]; keep(src) {
			out = append(out, src.Clone())
		}
	}
	return out
}
