// Package seed loads canonical fields, products and sources from a YAML
// file at startup. Entries that already exist are left alone, so the same
// file can be applied on every boot.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	cfmodels "leadhub/internal/canonicalfield/models"
	productmodels "leadhub/internal/product/models"
	dErrors "leadhub/pkg/domain-errors"
	"leadhub/pkg/platform/sentinel"
	"leadhub/pkg/requestcontext"
)

// File is the seed document.
type File struct {
	CanonicalFields []Field   `yaml:"canonical_fields"`
	Products        []Product `yaml:"products"`
	Sources         []Source  `yaml:"sources"`
}

type Field struct {
	FieldName   string             `yaml:"field_name"`
	DisplayName string             `yaml:"display_name"`
	FieldType   cfmodels.FieldType `yaml:"field_type"`
	IsActive    *bool              `yaml:"is_active"`
	IsRequired  *bool              `yaml:"is_required"`
	Version     string             `yaml:"version"`
}

type Product struct {
	PID                 string   `yaml:"p_id"`
	PName               string   `yaml:"p_name"`
	DeduplicationFields []string `yaml:"deduplication_fields"`
}

type Source struct {
	SourceID   string   `yaml:"source_id"`
	SourceName string   `yaml:"source_name"`
	PID        string   `yaml:"p_id"`
	Columns    []string `yaml:"columns"`
}

// FieldStore stores canonical fields. Seeding writes to the store directly
// because the identity types Email and Phone may only come from seed data.
type FieldStore interface {
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, field *cfmodels.CanonicalField) error
}

// CatalogCreator creates products and sources.
type CatalogCreator interface {
	CreateProduct(ctx context.Context, req *productmodels.CreateProductRequest) (*productmodels.Product, error)
	CreateSource(ctx context.Context, req *productmodels.CreateSourceRequest) (*productmodels.Source, error)
}

// Report counts what Apply did.
type Report struct {
	Created int
	Skipped int
}

// LoadFile reads and decodes the seed file at path.
func LoadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a seed document. Unknown keys are an error.
func Decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var file File
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &file, nil
}

// Apply creates every entry of file through the services, fields first and
// sources last so each product exists before its sources. Conflicts count as
// skipped; any other failure stops the run.
func Apply(ctx context.Context, file *File, fields FieldStore, catalog CatalogCreator, logger *slog.Logger) (Report, error) {
	var report Report
	record := func(kind, key string, err error) error {
		switch {
		case err == nil:
			report.Created++
			return nil
		case dErrors.Is(err, dErrors.CodeConflict):
			report.Skipped++
			logger.DebugContext(ctx, "seed entry exists", "kind", kind, "key", key)
			return nil
		default:
			return fmt.Errorf("seed %s %s: %w", kind, key, err)
		}
	}

	for _, f := range file.CanonicalFields {
		req := &cfmodels.CreateRequest{
			FieldName:   f.FieldName,
			DisplayName: f.DisplayName,
			FieldType:   f.FieldType,
			IsActive:    f.IsActive,
			IsRequired:  f.IsRequired,
			Version:     f.Version,
		}
		if err := record("canonical field", f.FieldName, createField(ctx, fields, req)); err != nil {
			return report, err
		}
	}
	for _, p := range file.Products {
		req := &productmodels.CreateProductRequest{PID: p.PID, PName: p.PName, DeduplicationFields: p.DeduplicationFields}
		if err := record("product", p.PID, create(ctx, req, catalog.CreateProduct)); err != nil {
			return report, err
		}
	}
	for _, s := range file.Sources {
		req := &productmodels.CreateSourceRequest{SourceID: s.SourceID, SourceName: s.SourceName, PID: s.PID, Columns: s.Columns}
		if err := record("source", s.SourceID, create(ctx, req, catalog.CreateSource)); err != nil {
			return report, err
		}
	}

	logger.InfoContext(ctx, "seed applied", "created", report.Created, "skipped", report.Skipped)
	return report, nil
}

func createField(ctx context.Context, store FieldStore, req *cfmodels.CreateRequest) error {
	req.Normalize()
	if req.FieldName == "" {
		return dErrors.New(dErrors.CodeValidation, "field_name is required")
	}
	if !req.FieldType.IsKnown() {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown field type %q", req.FieldType))
	}
	exists, err := store.ExistsByName(ctx, req.FieldName)
	if err != nil {
		return err
	}
	if exists {
		return dErrors.New(dErrors.CodeConflict, "canonical field exists")
	}
	if err := store.Create(ctx, req.Field(requestcontext.Now(ctx))); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeConflict, "canonical field exists")
		}
		return err
	}
	return nil
}

type request interface {
	Normalize()
	Validate() error
}

// create prepares req the way the HTTP layer does and hands it to fn.
func create[R request, T any](ctx context.Context, req R, fn func(context.Context, R) (T, error)) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}
	_, err := fn(ctx, req)
	return err
}
