package attrs

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestExtractString(t *testing.T) {
	leadID := uuid.New()
	kv := []any{"p_id", "LOAN01", "lead_id", leadID, "count", 3}

	assert.Equal(t, "LOAN01", ExtractString(kv, "p_id"))
	assert.Equal(t, leadID.String(), ExtractString(kv, "lead_id"))
	assert.Empty(t, ExtractString(kv, "count"))
	assert.Empty(t, ExtractString(kv, "missing"))
}

func TestToMap(t *testing.T) {
	got := ToMap([]any{"a", 1, 2, "skipped", "dangling"})
	assert.Equal(t, map[string]any{"a": 1}, got)
}
