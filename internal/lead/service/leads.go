package service

import (
	"context"
	"errors"
	"fmt"

	"leadhub/internal/identity"
	"leadhub/internal/lead/models"
	"leadhub/internal/lead/scoring"
	id "leadhub/pkg/domain"
	dErrors "leadhub/pkg/domain-errors"
	"leadhub/pkg/platform/events"
	"leadhub/pkg/platform/sentinel"
	"leadhub/pkg/requestcontext"
)

// Create stores one lead submitted through the API. Product and source are
// checked before anything is written; the lead then goes through Upsert so
// an existing match absorbs it.
func (s *Service) Create(ctx context.Context, req *models.CreateLeadRequest) (*models.UpsertResult, error) {
	pID, sourceID, err := s.requireAssociations(ctx, req.PID, req.SourceID)
	if err != nil {
		return nil, err
	}

	row, err := normalizeRequestRow(req)
	if err != nil {
		return nil, err
	}

	result, err := s.Upsert(ctx, models.UpsertInput{
		Row:      row,
		PID:      pID,
		SourceID: sourceID,
		RawRow:   req.RawData(),
	})
	if err != nil {
		return nil, err
	}

	attrs, err := req.Attributes().Normalized()
	if err != nil {
		return nil, err
	}
	if !attrs.IsEmpty() {
		lead, err := s.leads.Update(ctx, result.Lead.LeadID, attrs.Apply)
		if err != nil {
			return nil, translateUpdate(err, result.Lead.LeadID)
		}
		result.Lead = lead
	}

	s.logAudit(ctx, "lead_created",
		"lead_id", result.Lead.LeadID.String(),
		"action", string(result.Action),
	)
	return result, nil
}

// Get returns one lead.
func (s *Service) Get(ctx context.Context, leadID id.LeadID) (*models.Lead, error) {
	lead, err := s.leads.FindByLeadID(ctx, leadID)
	if err != nil {
		return nil, translateNotFound(err, leadID)
	}
	return lead, nil
}

// List returns one page of leads. The limit is clamped to 1..100.
func (s *Service) List(ctx context.Context, filter models.ListFilter) (*models.Page, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	filter.Limit = min(filter.Limit, 100)

	leads, total, err := s.leads.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list leads")
	}
	return &models.Page{
		Leads:      leads,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: (total + filter.Limit - 1) / filter.Limit,
	}, nil
}

// Update applies a patch. Identifiers are re-normalized, a changed product or
// source must exist, and the lead must still carry an identifier afterwards.
func (s *Service) Update(ctx context.Context, leadID id.LeadID, patch models.LeadPatch) (*models.Lead, error) {
	if patch.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "no fields to update")
	}
	normalized, err := patch.Normalized()
	if err != nil {
		return nil, err
	}
	if err := s.requirePatchAssociations(ctx, normalized); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	lead, err := s.leads.Update(ctx, leadID, func(lead *models.Lead) error {
		if err := normalized.Apply(lead); err != nil {
			return err
		}
		lead.Touch(now)
		return nil
	})
	if err != nil {
		return nil, translateUpdate(err, leadID)
	}
	s.logAudit(ctx, "lead_updated", "lead_id", leadID.String())
	return lead, nil
}

// Delete removes one lead.
func (s *Service) Delete(ctx context.Context, leadID id.LeadID) error {
	if err := s.leads.Delete(ctx, leadID); err != nil {
		return translateNotFound(err, leadID)
	}
	s.incrementDeleted()
	s.logAudit(ctx, "lead_deleted", "lead_id", leadID.String())
	s.emit(ctx, events.TypeLeadDeleted, leadID.String(), nil)
	return nil
}

// History returns the provenance trail of one lead.
func (s *Service) History(ctx context.Context, leadID id.LeadID) (*models.HistoryResponse, error) {
	lead, err := s.Get(ctx, leadID)
	if err != nil {
		return nil, err
	}
	return models.History(lead), nil
}

// Score computes the lead's score and stores it on the lead.
func (s *Service) Score(ctx context.Context, leadID id.LeadID) (*models.Lead, scoring.Result, error) {
	now := requestcontext.Now(ctx)
	var result scoring.Result
	lead, err := s.leads.Update(ctx, leadID, func(lead *models.Lead) error {
		result = scoring.Score(lead)
		lead.LeadScore = &result.Score
		lead.ScoreReason = &result.Reason
		lead.Touch(now)
		return nil
	})
	if err != nil {
		return nil, scoring.Result{}, translateUpdate(err, leadID)
	}
	s.incrementScored()
	return lead, result, nil
}

func (s *Service) requireAssociations(ctx context.Context, rawPID, rawSourceID string) (id.ProductID, id.SourceID, error) {
	var (
		pID      id.ProductID
		sourceID id.SourceID
		err      error
	)
	if rawPID != "" {
		if pID, err = id.ParseProductID(rawPID); err != nil {
			return "", "", err
		}
		if err := s.requireProduct(ctx, pID); err != nil {
			return "", "", err
		}
	}
	if rawSourceID != "" {
		if sourceID, err = id.ParseSourceID(rawSourceID); err != nil {
			return "", "", err
		}
		if err := s.requireSource(ctx, sourceID); err != nil {
			return "", "", err
		}
	}
	return pID, sourceID, nil
}

func (s *Service) requirePatchAssociations(ctx context.Context, patch models.LeadPatch) error {
	if patch.PID != nil {
		if err := s.requireProduct(ctx, id.ProductID(*patch.PID)); err != nil {
			return err
		}
	}
	if patch.SourceID != nil {
		if err := s.requireSource(ctx, id.SourceID(*patch.SourceID)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) requireProduct(ctx context.Context, pID id.ProductID) error {
	ok, err := s.catalog.ProductExists(ctx, pID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up product")
	}
	if !ok {
		return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("Product '%s' not found", pID))
	}
	return nil
}

func (s *Service) requireSource(ctx context.Context, sourceID id.SourceID) error {
	ok, err := s.catalog.SourceExists(ctx, sourceID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up source")
	}
	if !ok {
		return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("Source '%s' not found", sourceID))
	}
	return nil
}

// normalizeRequestRow normalizes the identity fields of an API request. A
// supplied identifier that does not normalize is rejected outright.
func normalizeRequestRow(req *models.CreateLeadRequest) (identity.Row, error) {
	row := identity.Row{}
	if req.Name != nil {
		row.Name = identity.NormalizeName(*req.Name)
	}
	if req.Email != nil {
		if row.Email = identity.NormalizeEmail(*req.Email); row.Email == nil {
			return identity.Row{}, dErrors.New(dErrors.CodeValidation, "Invalid email format")
		}
	}
	if req.PhoneNumber != nil {
		if row.Phone = identity.NormalizePhone(*req.PhoneNumber); row.Phone == nil {
			return identity.Row{}, dErrors.New(dErrors.CodeValidation, "Invalid phone number")
		}
	}
	if req.AadharNumber != nil {
		if row.Aadhar = identity.NormalizeAadhar(*req.AadharNumber); row.Aadhar == nil {
			return identity.Row{}, dErrors.New(dErrors.CodeValidation, "Invalid aadhar number")
		}
	}
	return row, nil
}

func translateNotFound(err error, leadID id.LeadID) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("Lead with lead_id '%s' not found", leadID))
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load lead")
}

// translateUpdate keeps coded errors raised inside an update and maps the
// rest like a lookup failure.
func translateUpdate(err error, leadID id.LeadID) error {
	var coded *dErrors.Error
	if errors.As(err, &coded) {
		return err
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return translateNotFound(err, leadID)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save lead")
}
