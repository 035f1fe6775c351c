package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "leadhub/pkg/domain"
)

func TestProductMemory(t *testing.T) {
	exerciseProducts(t, NewProductMemory())
}

func TestSourceMemory(t *testing.T) {
	exerciseSources(t, NewSourceMemory())
}

func TestProductMemoryReturnsClones(t *testing.T) {
	ctx := context.Background()
	s := NewProductMemory()
	require.NoError(t, s.Save(ctx, newProduct("PL", "Personal Loan", 0, id.IdentifierEmail)))

	got, err := s.FindByPID(ctx, "PL")
	require.NoError(t, err)
	got.DeduplicationFields[0] = id.IdentifierAadhar

	again, err := s.FindByPID(ctx, "PL")
	require.NoError(t, err)
	assert.Equal(t, []id.IdentifierField{id.IdentifierEmail}, again.DeduplicationFields)
}
