// Package service manages the canonical upload schema. Fields can be created
// and read; there is no update or delete.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"leadhub/internal/canonicalfield/models"
	"leadhub/internal/canonicalfield/validator"
	dErrors "leadhub/pkg/domain-errors"
	"leadhub/pkg/platform/sentinel"
	"leadhub/pkg/requestcontext"
)

// Store is the canonical field persistence the service needs.
type Store interface {
	Create(ctx context.Context, field *models.CanonicalField) error
	FindByName(ctx context.Context, name string) (*models.CanonicalField, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	FindAll(ctx context.Context) ([]*models.CanonicalField, error)
	FindActive(ctx context.Context) ([]*models.CanonicalField, error)
}

type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Create stores a new field. A taken name is a conflict.
func (s *Service) Create(ctx context.Context, req *models.CreateRequest) (*models.CanonicalField, error) {
	exists, err := s.store.ExistsByName(ctx, req.FieldName)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check canonical field")
	}
	if exists {
		return nil, fieldExists(req.FieldName)
	}

	field := req.Field(requestcontext.Now(ctx))
	if err := s.store.Create(ctx, field); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, fieldExists(req.FieldName)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create canonical field")
	}
	s.logger.InfoContext(ctx, "canonical_field_created",
		"field_name", field.FieldName,
		"field_type", string(field.FieldType),
		"request_id", requestcontext.RequestID(ctx),
		"event", "canonical_field_created",
		"log_type", "audit",
	)
	return field, nil
}

// Get returns one field by name, case-insensitively.
func (s *Service) Get(ctx context.Context, name string) (*models.CanonicalField, error) {
	field, err := s.store.FindByName(ctx, strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("Canonical field '%s' not found", name))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get canonical field")
	}
	return field, nil
}

// List returns every field, or only the active ones.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]*models.CanonicalField, error) {
	var (
		fields []*models.CanonicalField
		err    error
	)
	if activeOnly {
		fields, err = s.store.FindActive(ctx)
	} else {
		fields, err = s.store.FindAll(ctx)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list canonical fields")
	}
	return fields, nil
}

// Schema returns the validator for the currently active fields.
func (s *Service) Schema(ctx context.Context) (*validator.Schema, error) {
	fields, err := s.List(ctx, true)
	if err != nil {
		return nil, err
	}
	return validator.NewSchema(fields), nil
}

func fieldExists(name string) error {
	return dErrors.New(dErrors.CodeConflict, fmt.Sprintf("Field '%s' already exists", name))
}
