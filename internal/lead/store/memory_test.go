package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemory(t *testing.T) {
	exerciseStore(t, NewInMemory())
}

func TestInMemoryReturnsClones(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	l := newLead("PL", "WEB", "raj@example.com", "", 0)
	require.NoError(t, s.Save(ctx, l))

	got, err := s.FindByLeadID(ctx, l.LeadID)
	require.NoError(t, err)
	got.SourcesSeen[0] = "MUTATED"
	*got.Email = "mutated@example.com"

	again, err := s.FindByLeadID(ctx, l.LeadID)
	require.NoError(t, err)
	assert.Equal(t, []string{"WEB"}, again.SourcesSeen)
	assert.Equal(t, "raj@example.com", *again.Email)
}

func TestSaveRequiresLeadID(t *testing.T) {
	assert.Error(t, NewInMemory().Save(context.Background(), nil))
}
