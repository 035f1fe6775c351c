package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadhub/internal/canonicalfield/models"
	"leadhub/pkg/platform/sentinel"
)

type fieldStore interface {
	Create(ctx context.Context, field *models.CanonicalField) error
	FindByName(ctx context.Context, name string) (*models.CanonicalField, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	FindAll(ctx context.Context) ([]*models.CanonicalField, error)
	FindActive(ctx context.Context) ([]*models.CanonicalField, error)
}

var (
	_ fieldStore = (*InMemory)(nil)
	_ fieldStore = (*PostgresStore)(nil)
)

func field(name string, typ models.FieldType, active bool) *models.CanonicalField {
	return &models.CanonicalField{
		FieldName:   name,
		DisplayName: name,
		FieldType:   typ,
		IsActive:    active,
		Version:     "v1",
		CreatedAt:   time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func exerciseStore(t *testing.T, s fieldStore) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, field("income", models.TypeNumber, true)))
	require.NoError(t, s.Create(ctx, field("city", models.TypeString, false)))
	require.NoError(t, s.Create(ctx, field("email", models.TypeEmail, true)))

	t.Run("duplicate name conflicts", func(t *testing.T) {
		err := s.Create(ctx, field("income", models.TypeString, true))
		assert.ErrorIs(t, err, sentinel.ErrConflict)

		got, err := s.FindByName(ctx, "income")
		require.NoError(t, err)
		assert.Equal(t, models.TypeNumber, got.FieldType, "the first definition is kept")
	})

	t.Run("lookup", func(t *testing.T) {
		exists, err := s.ExistsByName(ctx, "city")
		require.NoError(t, err)
		assert.True(t, exists)

		_, err = s.FindByName(ctx, "pincode")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("listings are ordered by name", func(t *testing.T) {
		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"city", "email", "income"}, names(all))

		active, err := s.FindActive(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"email", "income"}, names(active))
	})
}

func names(fields []*models.CanonicalField) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.FieldName
	}
	return out
}
