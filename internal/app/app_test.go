package app

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadhub/internal/ingest/models"
	leadmodels "leadhub/internal/lead/models"
	"leadhub/internal/platform/config"
)

func TestBuildInMemory(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{SeedFile: "../seed/testdata/seed.yaml"}

	a, err := Build(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.Close()) })

	assert.Empty(t, a.Checks(), "in-memory dependencies have nothing to probe")
	assert.Nil(t, a.Worker)

	report, err := a.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, report.Created)

	table, err := models.ParseCSV(strings.NewReader(
		"name,email,phone_number\n" +
			"Raj,raj@example.com,9876543210\n" +
			"Raj Kumar,,919876543210\n"))
	require.NoError(t, err)

	result, err := a.Ingest.Upload(ctx, models.Upload{PID: "PL", SourceID: "WEB", Table: table})
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalRows)
	assert.Equal(t, 1, result.InsertedCount)
	assert.Equal(t, 1, result.MergedCount)
	require.NotNil(t, result.Deduplication)
	assert.Equal(t, 1, result.Deduplication.FinalLeadCount)

	page, err := a.Leads.List(ctx, leadmodels.ListFilter{PID: "PL"})
	require.NoError(t, err)
	require.Len(t, page.Leads, 1)
	require.NotNil(t, page.Leads[0].Name)
	assert.Equal(t, "Raj", *page.Leads[0].Name)
	assert.Equal(t, "9876543210", *page.Leads[0].PhoneNumber)

	families, err := a.Registry.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "leadhub_lead_upserts_total")
}

func TestSeedWithoutFile(t *testing.T) {
	a, err := Build(context.Background(), config.Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	report, err := a.Seed(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report)
}
