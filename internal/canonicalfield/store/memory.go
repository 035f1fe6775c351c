// Package store persists canonical fields. Listings are ordered by field name.
package store

import (
	"context"
	"sort"
	"sync"

	"leadhub/internal/canonicalfield/models"
	"leadhub/pkg/platform/sentinel"
)

// InMemory keeps canonical fields in a map keyed by field name.
type InMemory struct {
	mu     sync.RWMutex
	fields map[string]*models.CanonicalField
}

// NewInMemory constructs an empty in-memory canonical field store.
func NewInMemory() *InMemory {
	return &InMemory{fields: make(map[string]*models.CanonicalField)}
}

// Create stores a new field. An existing name is sentinel.ErrConflict.
func (s *InMemory) Create(_ context.Context, field *models.CanonicalField) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fields[field.FieldName]; ok {
		return sentinel.ErrConflict
	}
	c := *field
	s.fields[field.FieldName] = &c
	return nil
}

func (s *InMemory) FindByName(_ context.Context, name string) (*models.CanonicalField, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fields[name]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *f
	return &c, nil
}

func (s *InMemory) ExistsByName(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.fields[name]
	return ok, nil
}

func (s *InMemory) FindAll(_ context.Context) ([]*models.CanonicalField, error) {
	return s.collect(func(*models.CanonicalField) bool { return true }), nil
}

func (s *InMemory) FindActive(_ context.Context) ([]*models.CanonicalField, error) {
	return s.collect(func(f *models.CanonicalField) bool { return f.IsActive }), nil
}

func (s *InMemory) collect(keep func(*models.CanonicalField) bool) []*models.CanonicalField {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.CanonicalField, 0, len(s.fields))
	for _, f := range s.fields {
		if keep(f) {
			c := *f
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FieldName < out[j].FieldName })
	return out
}
