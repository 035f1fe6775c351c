package service

import (
	"context"
	"errors"
	"fmt"

	"leadhub/internal/product/models"
	id "leadhub/pkg/domain"
	dErrors "leadhub/pkg/domain-errors"
	"leadhub/pkg/platform/sentinel"
	pstrings "leadhub/pkg/platform/strings"
	"leadhub/pkg/requestcontext"
)

// CreateSource stores a new source for an existing product.
func (s *Service) CreateSource(ctx context.Context, req *models.CreateSourceRequest) (*models.Source, error) {
	sourceID, err := id.ParseSourceID(req.SourceID)
	if err != nil {
		return nil, err
	}
	pID, err := id.ParseProductID(req.PID)
	if err != nil {
		return nil, err
	}
	if err := s.requireProduct(ctx, pID); err != nil {
		return nil, err
	}
	exists, err := s.sources.ExistsByID(ctx, sourceID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check source")
	}
	if exists {
		return nil, dErrors.New(dErrors.CodeConflict, fmt.Sprintf("Source with s_id '%s' already exists", sourceID))
	}

	now := requestcontext.Now(ctx)
	source := &models.Source{
		SourceID:   sourceID,
		SourceName: req.SourceName,
		PID:        pID,
		Columns:    pstrings.DedupeAndTrim(req.Columns),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.sources.Save(ctx, source); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save source")
	}
	s.logAudit(ctx, "source_created", "source_id", string(sourceID), "p_id", string(pID))
	return source, nil
}

// GetSource returns one source.
func (s *Service) GetSource(ctx context.Context, sourceID id.SourceID) (*models.Source, error) {
	source, err := s.sources.FindByID(ctx, sourceID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, sourceNotFound(sourceID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get source")
	}
	return source, nil
}

// ListSources returns every source, or those of one product when pID is set.
func (s *Service) ListSources(ctx context.Context, pID id.ProductID) ([]*models.Source, error) {
	var (
		sources []*models.Source
		err     error
	)
	if pID == "" {
		sources, err = s.sources.FindAll(ctx)
	} else {
		sources, err = s.sources.FindByPID(ctx, pID)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list sources")
	}
	return sources, nil
}

// UpdateSource changes the name, product or expected columns.
func (s *Service) UpdateSource(ctx context.Context, sourceID id.SourceID, req *models.UpdateSourceRequest) (*models.Source, error) {
	source, err := s.GetSource(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if req.SourceName != nil {
		source.SourceName = *req.SourceName
	}
	if req.PID != nil {
		pID := id.ProductID(*req.PID)
		if err := s.requireProduct(ctx, pID); err != nil {
			return nil, err
		}
		source.PID = pID
	}
	if req.Columns != nil {
		source.Columns = pstrings.DedupeAndTrim(req.Columns)
	}
	source.UpdatedAt = requestcontext.Now(ctx)
	if err := s.sources.Save(ctx, source); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save source")
	}
	s.logAudit(ctx, "source_updated", "source_id", string(sourceID))
	return source, nil
}

// DeleteSource removes a source no lead references.
func (s *Service) DeleteSource(ctx context.Context, sourceID id.SourceID) error {
	count, err := s.leads.CountBySourceID(ctx, sourceID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count leads")
	}
	if count > 0 {
		return dErrors.New(dErrors.CodeConflict, "Cannot delete source: leads are associated with this source")
	}
	if err := s.sources.Delete(ctx, sourceID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return sourceNotFound(sourceID)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete source")
	}
	s.logAudit(ctx, "source_deleted", "source_id", string(sourceID))
	return nil
}

// SourceExists reports whether sourceID names a stored source.
func (s *Service) SourceExists(ctx context.Context, sourceID id.SourceID) (bool, error) {
	return s.sources.ExistsByID(ctx, sourceID)
}

func (s *Service) requireProduct(ctx context.Context, pID id.ProductID) error {
	ok, err := s.ProductExists(ctx, pID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up product")
	}
	if !ok {
		return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("Product '%s' not found", pID))
	}
	return nil
}

func sourceNotFound(sourceID id.SourceID) error {
	return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("Source with s_id '%s' not found", sourceID))
}
