package service

import (
	"context"
	"errors"
	"time"

	"leadhub/internal/identity"
	"leadhub/internal/lead/models"
	dErrors "leadhub/pkg/domain-errors"
	"leadhub/pkg/platform/events"
	"leadhub/pkg/platform/sentinel"
	"leadhub/pkg/requestcontext"
)

// upsertAttempts bounds how often a merge-in retries the identifier lookup
// when the matched lead is deleted before it can be updated.
const upsertAttempts = 3

// Upsert stores one normalized row. The row's identifiers are looked up in
// order email, phone, aadhar and the first stored lead that matches absorbs
// the row; with no match a new lead is created.
//
// A merge only fills empty fields. Populated values on the stored lead are
// never overwritten, the seen sets gain the row's source and product, and
// one provenance record is appended. The merge runs through the store's
// atomic Update so concurrent merge-ins into one lead all land.
func (s *Service) Upsert(ctx context.Context, in models.UpsertInput) (*models.UpsertResult, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveUpsert(start)
		}
	}()

	if !in.Row.HasAnyIdentifier() {
		return nil, models.ErrMissingIdentifier
	}
	now := requestcontext.Now(ctx)

	lead, action, err := s.upsert(ctx, in, now)
	if err != nil {
		return nil, err
	}

	s.incrementUpsert(action)
	s.emit(ctx, events.TypeLeadUpserted, lead.LeadID.String(), map[string]any{
		"action":   string(action),
		"pId":      string(in.PID),
		"sourceId": string(in.SourceID),
	})
	return &models.UpsertResult{Action: action, Lead: lead}, nil
}

func (s *Service) upsert(ctx context.Context, in models.UpsertInput, now time.Time) (*models.Lead, models.Action, error) {
	for attempt := 1; ; attempt++ {
		existing, err := s.findExisting(ctx, in.Row)
		if err != nil {
			return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up lead")
		}

		if existing == nil {
			lead, err := models.NewLead(s.newID(), in.Row, in.SourceID, in.PID, in.RawRow, now)
			if err != nil {
				return nil, "", err
			}
			if err := s.leads.Save(ctx, lead); err != nil {
				return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to save lead")
			}
			return lead, models.ActionInserted, nil
		}

		lead, err := s.leads.Update(ctx, existing.LeadID, func(lead *models.Lead) error {
			mergeInto(lead, in, now)
			return nil
		})
		if errors.Is(err, sentinel.ErrNotFound) && attempt < upsertAttempts {
			continue
		}
		if err != nil {
			return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to save lead")
		}
		return lead, models.ActionMerged, nil
	}
}

// mergeInto folds one row into a stored lead.
func mergeInto(lead *models.Lead, in models.UpsertInput, now time.Time) {
	lead.FillEmpty(in.Row.Name, in.Row.Email, in.Row.Phone, in.Row.Aadhar)
	lead.Observe(in.SourceID, in.PID)
	lead.AppendHistory(models.MergeRecord{
		Timestamp: now,
		SourceID:  in.SourceID,
		PID:       in.PID,
		RawData:   in.RawRow,
	})
	lead.Touch(now)
}

// findExisting returns the first lead matching the row's identifiers in
// lookup order, or nil when none matches.
func (s *Service) findExisting(ctx context.Context, row identity.Row) (*models.Lead, error) {
	lookups := []struct {
		value *string
		find  func(context.Context, string) (*models.Lead, error)
	}{
		{row.Email, s.leads.FindByEmail},
		{row.Phone, s.leads.FindByPhone},
		{row.Aadhar, s.leads.FindByAadhar},
	}
	for _, lookup := range lookups {
		if lookup.value == nil || *lookup.value == "" {
			continue
		}
		lead, err := lookup.find(ctx, *lookup.value)
		if err == nil {
			return lead, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, err
		}
	}
	return nil, nil
}
