package seed

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfmodels "leadhub/internal/canonicalfield/models"
	cfstore "leadhub/internal/canonicalfield/store"
	leadstore "leadhub/internal/lead/store"
	productservice "leadhub/internal/product/service"
	productstore "leadhub/internal/product/store"
	id "leadhub/pkg/domain"
)

func TestLoadFile(t *testing.T) {
	file, err := LoadFile("testdata/seed.yaml")
	require.NoError(t, err)

	require.Len(t, file.CanonicalFields, 4)
	assert.Equal(t, cfmodels.TypeEmail, file.CanonicalFields[1].FieldType)
	require.NotNil(t, file.CanonicalFields[3].IsActive)
	assert.False(t, *file.CanonicalFields[3].IsActive)
	assert.Equal(t, []string{"email", "phone_number"}, file.Products[0].DeduplicationFields)
	assert.Len(t, file.Sources, 2)
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("products:\n  - p_id: PL\n    colour: red\n"))
	require.Error(t, err)

	file, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, file.Products)
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fields := cfstore.NewInMemory()
	products := productstore.NewProductMemory()
	sources := productstore.NewSourceMemory()
	catalog := productservice.New(products, sources, leadstore.NewInMemory(), productservice.WithLogger(logger))

	file, err := LoadFile("testdata/seed.yaml")
	require.NoError(t, err)

	report, err := Apply(ctx, file, fields, catalog, logger)
	require.NoError(t, err)
	assert.Equal(t, Report{Created: 8}, report)

	active, err := fields.FindActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 3)

	pl, err := products.FindByPID(ctx, "PL")
	require.NoError(t, err)
	assert.Equal(t, []id.IdentifierField{id.IdentifierEmail, id.IdentifierPhone}, pl.DeduplicationFields)

	web, err := sources.FindByID(ctx, "WEB")
	require.NoError(t, err)
	assert.Equal(t, id.ProductID("PL"), web.PID)

	t.Run("second run skips everything", func(t *testing.T) {
		report, err := Apply(ctx, file, fields, catalog, logger)
		require.NoError(t, err)
		assert.Equal(t, Report{Skipped: 8}, report)
	})

	t.Run("invalid entries stop the run", func(t *testing.T) {
		bad := &File{Sources: []Source{{SourceID: "APP", SourceName: "App", PID: "NOPE"}}}
		_, err := Apply(ctx, bad, fields, catalog, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "seed source APP")
	})
}
