package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadhub/internal/lead/models"
	id "leadhub/pkg/domain"
	"leadhub/pkg/platform/sentinel"
)

// contractStore is the lead store surface shared by both implementations.
type contractStore interface {
	Save(ctx context.Context, lead *models.Lead) error
	Update(ctx context.Context, leadID id.LeadID, fn func(*models.Lead) error) (*models.Lead, error)
	Delete(ctx context.Context, leadID id.LeadID) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	FindAll(ctx context.Context) ([]*models.Lead, error)
	FindByPID(ctx context.Context, pID id.ProductID) ([]*models.Lead, error)
	FindBySourceID(ctx context.Context, sourceID id.SourceID) ([]*models.Lead, error)
	CountBySourceID(ctx context.Context, sourceID id.SourceID) (int, error)
	FindByLeadID(ctx context.Context, leadID id.LeadID) (*models.Lead, error)
	FindByEmail(ctx context.Context, email string) (*models.Lead, error)
	FindByPhone(ctx context.Context, phone string) (*models.Lead, error)
	FindByAadhar(ctx context.Context, aadhar string) (*models.Lead, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Lead, int, error)
}

var (
	_ contractStore = (*InMemory)(nil)
	_ contractStore = (*PostgresStore)(nil)
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func str(v string) *string { return &v }

func newLead(pID id.ProductID, sourceID id.SourceID, email, phone string, offset time.Duration) *models.Lead {
	created := t0.Add(offset)
	l := &models.Lead{
		LeadID:       id.NewLeadID(),
		Name:         str("Raj"),
		SourceID:     sourceID,
		PID:          pID,
		SourcesSeen:  []string{string(sourceID)},
		ProductsSeen: []string{string(pID)},
		MergedFrom: []models.MergeRecord{{
			Timestamp: created,
			SourceID:  sourceID,
			PID:       pID,
			RawData:   map[string]any{"phone": phone},
		}},
		CreatedAt: created,
		UpdatedAt: created,
	}
	if email != "" {
		l.Email = str(email)
	}
	if phone != "" {
		l.PhoneNumber = str(phone)
	}
	return l
}

// exerciseStore runs the behaviour both lead stores must share.
func exerciseStore(t *testing.T, s contractStore) {
	ctx := context.Background()
	require.NoError(t, s.DeleteAll(ctx))

	a := newLead("PL", "WEB", "raj@example.com", "9876543210", 0)
	income := decimal.RequireFromString("55000.50")
	a.Income = &income
	b := newLead("PL", "APP", "", "9876543210", time.Hour)
	c := newLead("CC", "WEB", "kumar@example.com", "", 2*time.Hour)
	for _, l := range []*models.Lead{a, b, c} {
		require.NoError(t, s.Save(ctx, l))
	}

	t.Run("round trips every field", func(t *testing.T) {
		got, err := s.FindByLeadID(ctx, a.LeadID)
		require.NoError(t, err)
		assert.Equal(t, "raj@example.com", *got.Email)
		assert.Equal(t, []string{"WEB"}, got.SourcesSeen)
		require.Len(t, got.MergedFrom, 1)
		assert.Equal(t, "9876543210", got.MergedFrom[0].RawData["phone"])
		require.NotNil(t, got.Income)
		assert.True(t, income.Equal(*got.Income))
		assert.True(t, a.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("identifier lookups return the earliest match", func(t *testing.T) {
		got, err := s.FindByPhone(ctx, "9876543210")
		require.NoError(t, err)
		assert.Equal(t, a.LeadID, got.LeadID)

		_, err = s.FindByAadhar(ctx, "123456789012")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		_, err = s.FindByEmail(ctx, "")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("filters keep insertion order", func(t *testing.T) {
		pl, err := s.FindByPID(ctx, "PL")
		require.NoError(t, err)
		require.Len(t, pl, 2)
		assert.Equal(t, a.LeadID, pl[0].LeadID)
		assert.Equal(t, b.LeadID, pl[1].LeadID)

		web, err := s.FindBySourceID(ctx, "WEB")
		require.NoError(t, err)
		assert.Len(t, web, 2)

		n, err := s.CountBySourceID(ctx, "APP")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("list pages and counts", func(t *testing.T) {
		page, total, err := s.List(ctx, models.ListFilter{Page: 2, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, page, 1)
		assert.Equal(t, c.LeadID, page[0].LeadID)

		page, total, err = s.List(ctx, models.ListFilter{PID: "PL", SourceID: "APP"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, b.LeadID, page[0].LeadID)
	})

	t.Run("save replaces the stored copy", func(t *testing.T) {
		got, err := s.FindByLeadID(ctx, b.LeadID)
		require.NoError(t, err)
		got.Email = str("b@example.com")
		got.Observe("WEB", "CC")
		require.NoError(t, s.Save(ctx, got))

		again, err := s.FindByLeadID(ctx, b.LeadID)
		require.NoError(t, err)
		assert.Equal(t, "b@example.com", *again.Email)
		assert.Equal(t, []string{"APP", "WEB"}, again.SourcesSeen)
		assert.Equal(t, []string{"PL", "CC"}, again.ProductsSeen)

		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("update serializes concurrent writers", func(t *testing.T) {
		const writers = 10
		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Update(ctx, a.LeadID, func(l *models.Lead) error {
					l.AppendHistory(models.MergeRecord{Timestamp: t0, SourceID: "APP", PID: "PL"})
					return nil
				})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		got, err := s.FindByLeadID(ctx, a.LeadID)
		require.NoError(t, err)
		assert.Len(t, got.MergedFrom, writers+1)
	})

	t.Run("failed update leaves the lead unchanged", func(t *testing.T) {
		boom := errors.New("rejected")
		_, err := s.Update(ctx, a.LeadID, func(l *models.Lead) error {
			l.Name = str("Changed")
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := s.FindByLeadID(ctx, a.LeadID)
		require.NoError(t, err)
		assert.Equal(t, "Raj", *got.Name)

		_, err = s.Update(ctx, id.NewLeadID(), func(*models.Lead) error { return nil })
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, c.LeadID))
		assert.ErrorIs(t, s.Delete(ctx, c.LeadID), sentinel.ErrNotFound)
		_, err := s.FindByLeadID(ctx, c.LeadID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)

		require.NoError(t, s.DeleteAll(ctx))
		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
