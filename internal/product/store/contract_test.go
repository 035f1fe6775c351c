package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadhub/internal/product/models"
	id "leadhub/pkg/domain"
	"leadhub/pkg/platform/sentinel"
)

type productStore interface {
	Save(ctx context.Context, product *models.Product) error
	FindByPID(ctx context.Context, pID id.ProductID) (*models.Product, error)
	ExistsByPID(ctx context.Context, pID id.ProductID) (bool, error)
	FindAll(ctx context.Context) ([]*models.Product, error)
	Delete(ctx context.Context, pID id.ProductID) error
}

type sourceStore interface {
	Save(ctx context.Context, source *models.Source) error
	FindByID(ctx context.Context, sourceID id.SourceID) (*models.Source, error)
	ExistsByID(ctx context.Context, sourceID id.SourceID) (bool, error)
	FindAll(ctx context.Context) ([]*models.Source, error)
	FindByPID(ctx context.Context, pID id.ProductID) ([]*models.Source, error)
	CountByPID(ctx context.Context, pID id.ProductID) (int, error)
	Delete(ctx context.Context, sourceID id.SourceID) error
}

var (
	_ productStore = (*ProductMemory)(nil)
	_ productStore = (*ProductPostgres)(nil)
	_ sourceStore  = (*SourceMemory)(nil)
	_ sourceStore  = (*SourcePostgres)(nil)
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newProduct(pID, name string, offset time.Duration, fields ...id.IdentifierField) *models.Product {
	return &models.Product{
		PID:                 id.ProductID(pID),
		PName:               name,
		DeduplicationFields: fields,
		CreatedAt:           t0.Add(offset),
		UpdatedAt:           t0.Add(offset),
	}
}

func newSource(sourceID, pID string, offset time.Duration) *models.Source {
	return &models.Source{
		SourceID:   id.SourceID(sourceID),
		SourceName: sourceID + " channel",
		PID:        id.ProductID(pID),
		Columns:    []string{"name", "email"},
		CreatedAt:  t0.Add(offset),
		UpdatedAt:  t0.Add(offset),
	}
}

func exerciseProducts(t *testing.T, s productStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("save and find", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, newProduct("PL", "Personal Loan", 0, id.IdentifierEmail, id.IdentifierPhone)))
		require.NoError(t, s.Save(ctx, newProduct("CC", "Credit Card", time.Minute)))

		got, err := s.FindByPID(ctx, "PL")
		require.NoError(t, err)
		assert.Equal(t, "Personal Loan", got.PName)
		assert.Equal(t, []id.IdentifierField{id.IdentifierEmail, id.IdentifierPhone}, got.DeduplicationFields)
		assert.True(t, got.CreatedAt.Equal(t0))

		exists, err := s.ExistsByPID(ctx, "CC")
		require.NoError(t, err)
		assert.True(t, exists)

		_, err = s.FindByPID(ctx, "HL")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("save replaces by pId", func(t *testing.T) {
		updated := newProduct("PL", "Personal Loan Plus", 0)
		updated.UpdatedAt = t0.Add(time.Hour)
		require.NoError(t, s.Save(ctx, updated))

		got, err := s.FindByPID(ctx, "PL")
		require.NoError(t, err)
		assert.Equal(t, "Personal Loan Plus", got.PName)
		assert.Empty(t, got.DeduplicationFields)

		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, id.ProductID("PL"), all[0].PID)
		assert.Equal(t, id.ProductID("CC"), all[1].PID)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "CC"))
		assert.ErrorIs(t, s.Delete(ctx, "CC"), sentinel.ErrNotFound)

		exists, err := s.ExistsByPID(ctx, "CC")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func exerciseSources(t *testing.T, s sourceStore) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, newSource("WEB", "PL", 0)))
	require.NoError(t, s.Save(ctx, newSource("BRANCH", "CC", time.Minute)))
	require.NoError(t, s.Save(ctx, newSource("APP", "PL", 2*time.Minute)))

	t.Run("find by id", func(t *testing.T) {
		got, err := s.FindByID(ctx, "WEB")
		require.NoError(t, err)
		assert.Equal(t, id.ProductID("PL"), got.PID)
		assert.Equal(t, []string{"name", "email"}, got.Columns)

		_, err = s.FindByID(ctx, "SMS")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("filter by product", func(t *testing.T) {
		pl, err := s.FindByPID(ctx, "PL")
		require.NoError(t, err)
		require.Len(t, pl, 2)
		assert.Equal(t, id.SourceID("WEB"), pl[0].SourceID)
		assert.Equal(t, id.SourceID("APP"), pl[1].SourceID)

		n, err := s.CountByPID(ctx, "CC")
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("re-pointing a source moves it between products", func(t *testing.T) {
		moved := newSource("BRANCH", "PL", time.Minute)
		require.NoError(t, s.Save(ctx, moved))

		n, err := s.CountByPID(ctx, "CC")
		require.NoError(t, err)
		assert.Zero(t, n)
		n, err = s.CountByPID(ctx, "PL")
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "APP"))
		assert.ErrorIs(t, s.Delete(ctx, "APP"), sentinel.ErrNotFound)

		exists, err := s.ExistsByID(ctx, "APP")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
