package store

import (
	"context"
	"sync"

	"leadhub/internal/lead/models"
	id "leadhub/pkg/domain"
	"leadhub/pkg/platform/sentinel"
)

// InMemory keeps leads in insertion order. Every read returns a clone so
// callers can mutate results without touching stored state.
type InMemory struct {
	mu    sync.RWMutex
	leads map[id.LeadID]*models.Lead
	order []id.LeadID
}

// NewInMemory constructs an empty in-memory lead store.
func NewInMemory() *InMemory {
	return &InMemory{leads: make(map[id.LeadID]*models.Lead)}
}

// Save inserts the lead or replaces the stored copy with the same LeadID.
func (s *InMemory) Save(_ context.Context, lead *models.Lead) error {
	if lead == nil || lead.LeadID.IsNil() {
		return errLeadRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.leads[lead.LeadID]; !ok {
		s.order = append(s.order, lead.LeadID)
	}
	s.leads[lead.LeadID] = lead.Clone()
	return nil
}

// Update runs fn against the stored lead while holding the write lock and
// stores the result. fn must not call back into the store. When fn fails
// the stored lead is left unchanged.
func (s *InMemory) Update(_ context.Context, leadID id.LeadID, fn func(*models.Lead) error) (*models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.leads[leadID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	lead := stored.Clone()
	if err := fn(lead); err != nil {
		return nil, err
	}
	lead.LeadID = leadID
	s.leads[leadID] = lead.Clone()
	return lead, nil
}

func (s *InMemory) Delete(_ context.Context, leadID id.LeadID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.leads[leadID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.leads, leadID)
	for i, existing := range s.order {
		if existing == leadID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *InMemory) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads = make(map[id.LeadID]*models.Lead)
	s.order = nil
	return nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.leads), nil
}

func (s *InMemory) FindAll(_ context.Context) ([]*models.Lead, error) {
	return s.collect(func(*models.Lead) bool { return true }), nil
}

func (s *InMemory) FindByPID(_ context.Context, pID id.ProductID) ([]*models.Lead, error) {
	return s.collect(func(l *models.Lead) bool { return l.PID == pID }), nil
}

func (s *InMemory) FindBySourceID(_ context.Context, sourceID id.SourceID) ([]*models.Lead, error) {
	return s.collect(func(l *models.Lead) bool { return l.SourceID == sourceID }), nil
}

// CountBySourceID counts leads whose current source is sourceID.
func (s *InMemory) CountBySourceID(_ context.Context, sourceID id.SourceID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, lead := range s.leads {
		if lead.SourceID == sourceID {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) FindByLeadID(_ context.Context, leadID id.LeadID) (*models.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lead, ok := s.leads[leadID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return lead.Clone(), nil
}

func (s *InMemory) FindByEmail(ctx context.Context, email string) (*models.Lead, error) {
	return s.findByIdentifier(ctx, id.IdentifierEmail, email)
}

func (s *InMemory) FindByPhone(ctx context.Context, phone string) (*models.Lead, error) {
	return s.findByIdentifier(ctx, id.IdentifierPhone, phone)
}

func (s *InMemory) FindByAadhar(ctx context.Context, aadhar string) (*models.Lead, error) {
	return s.findByIdentifier(ctx, id.IdentifierAadhar, aadhar)
}

// List returns one page of leads matching filter plus the full match count.
func (s *InMemory) List(_ context.Context, filter models.ListFilter) ([]*models.Lead, int, error) {
	matched := s.collect(func(l *models.Lead) bool {
		if filter.PID != "" && l.PID != filter.PID {
			return false
		}
		if filter.SourceID != "" && l.SourceID != filter.SourceID {
			return false
		}
		return true
	})
	offset, limit := window(filter)
	if offset >= len(matched) {
		return []*models.Lead{}, len(matched), nil
	}
	end := min(offset+limit, len(matched))
	return matched[offset:end], len(matched), nil
}

// findByIdentifier returns the earliest stored lead whose field equals value.
func (s *InMemory) findByIdentifier(_ context.Context, field id.IdentifierField, value string) (*models.Lead, error) {
	if value == "" {
		return nil, sentinel.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, leadID := range s.order {
		lead := s.leads[leadID]
		if v := lead.Identifier(field); v != nil && *v == value {
			return lead.Clone(), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) collect(keep func(*models.Lead) bool) []*models.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Lead, 0, len(s.order))
	for _, leadID := range s.order {
		lead := s.leads[leadID]
		if keep(lead) {
			out = append(out, lead.Clone())
		}
	}
	return out
}
