package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"leadhub/internal/identity"
	"leadhub/internal/lead/models"
	"leadhub/internal/lead/store"
	id "leadhub/pkg/domain"
	dErrors "leadhub/pkg/domain-errors"
	"leadhub/pkg/platform/events"
	"leadhub/pkg/requestcontext"
)

type staticCatalog struct {
	products map[id.ProductID]bool
	sources  map[id.SourceID]bool
}

func (c staticCatalog) ProductExists(_ context.Context, pID id.ProductID) (bool, error) {
	return c.products[pID], nil
}

func (c staticCatalog) SourceExists(_ context.Context, sourceID id.SourceID) (bool, error) {
	return c.sources[sourceID], nil
}

type UpsertSuite struct {
	suite.Suite
	ctx      context.Context
	now      time.Time
	store    *store.InMemory
	recorder *events.Recorder
	service  *Service
}

func TestUpsertSuite(t *testing.T) {
	suite.Run(t, new(UpsertSuite))
}

func (s *UpsertSuite) SetupTest() {
	s.now = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.store = store.NewInMemory()
	s.recorder = events.NewRecorder()
	catalog := staticCatalog{
		products: map[id.ProductID]bool{"PL": true, "CC": true},
		sources:  map[id.SourceID]bool{"WEB": true, "BRANCH": true},
	}
	s.service = New(s.store, catalog,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithEventPublisher(s.recorder),
	)
}

func str(v string) *string { return &v }

func (s *UpsertSuite) upsert(row identity.Row, pID id.ProductID, sourceID id.SourceID) *models.UpsertResult {
	res, err := s.service.Upsert(s.ctx, models.UpsertInput{
		Row:      row,
		PID:      pID,
		SourceID: sourceID,
		RawRow:   map[string]any{"raw": "row"},
	})
	s.Require().NoError(err)
	return res
}

func (s *UpsertSuite) TestInsert() {
	res := s.upsert(identity.Row{Name: str("Raj"), Phone: str("9876543210")}, "PL", "WEB")

	s.Equal(models.ActionInserted, res.Action)
	s.False(res.Lead.LeadID.IsNil())
	s.Equal([]string{"WEB"}, res.Lead.SourcesSeen)
	s.Equal([]string{"PL"}, res.Lead.ProductsSeen)
	s.Require().Len(res.Lead.MergedFrom, 1)
	s.Equal(s.now, res.Lead.MergedFrom[0].Timestamp)
	s.Equal(s.now, res.Lead.CreatedAt)
	s.Equal(s.now, res.Lead.UpdatedAt)
	s.Len(s.recorder.OfType(events.TypeLeadUpserted), 1)
}

func (s *UpsertSuite) TestRoundTrip() {
	row := identity.Row{Email: str("raj@example.com")}
	first := s.upsert(row, "PL", "WEB")
	second := s.upsert(row, "PL", "WEB")

	s.Equal(models.ActionMerged, second.Action)
	s.Equal(first.Lead.LeadID, second.Lead.LeadID)
	s.Len(second.Lead.MergedFrom, 2)
	s.Equal([]string{"WEB"}, second.Lead.SourcesSeen)

	count, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *UpsertSuite) TestMergeOnlyFillsEmptyFields() {
	s.upsert(identity.Row{Name: str("Raj"), Phone: str("9876543210")}, "PL", "WEB")
	res := s.upsert(identity.Row{
		Name:   str("Rajesh"),
		Phone:  str("9876543210"),
		Aadhar: str("123456789012"),
		Email:  str("raj@example.com"),
	}, "CC", "BRANCH")

	s.Equal(models.ActionMerged, res.Action)
	s.Equal("Raj", *res.Lead.Name)
	s.Equal("123456789012", *res.Lead.AadharNumber)
	s.Equal("raj@example.com", *res.Lead.Email)
	s.Equal([]string{"WEB", "BRANCH"}, res.Lead.SourcesSeen)
	s.Equal([]string{"PL", "CC"}, res.Lead.ProductsSeen)
	s.Equal(id.SourceID("WEB"), res.Lead.SourceID, "current association is not moved by a merge")
}

func (s *UpsertSuite) TestLookupOrderPrefersEmail() {
	byPhone := s.upsert(identity.Row{Phone: str("9876543210")}, "PL", "WEB")
	byEmail := s.upsert(identity.Row{Email: str("raj@example.com")}, "PL", "WEB")
	s.NotEqual(byPhone.Lead.LeadID, byEmail.Lead.LeadID)

	res := s.upsert(identity.Row{Email: str("raj@example.com"), Phone: str("9876543210")}, "PL", "WEB")
	s.Equal(byEmail.Lead.LeadID, res.Lead.LeadID)

	res = s.upsert(identity.Row{Phone: str("9876543210"), Aadhar: str("123456789012")}, "PL", "WEB")
	s.Equal(byPhone.Lead.LeadID, res.Lead.LeadID)
}

func (s *UpsertSuite) TestRejectsRowWithoutIdentifier() {
	_, err := s.service.Upsert(s.ctx, models.UpsertInput{Row: identity.Row{Name: str("Raj")}, PID: "PL", SourceID: "WEB"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	count, _ := s.store.Count(s.ctx)
	s.Zero(count)
}

func (s *UpsertSuite) TestCreate() {
	s.Run("unknown product fails before any write", func() {
		_, err := s.service.Create(s.ctx, &models.CreateLeadRequest{Email: str("a@b.co"), PID: "NOPE", SourceID: "WEB"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.Contains(err.Error(), "Product 'NOPE' not found")
		count, _ := s.store.Count(s.ctx)
		s.Zero(count)
	})

	s.Run("invalid identifier is rejected", func() {
		_, err := s.service.Create(s.ctx, &models.CreateLeadRequest{Email: str("not-an-email"), PID: "PL", SourceID: "WEB"})
		s.Require().Error(err)
		s.Contains(err.Error(), "Invalid email format")
	})

	s.Run("normalizes and stores attributes", func() {
		res, err := s.service.Create(s.ctx, &models.CreateLeadRequest{
			Name:           str("Asha"),
			PhoneNumber:    str("+91 99887 76655"),
			PID:            "PL",
			SourceID:       "WEB",
			EmploymentType: str("salaried"),
		})
		s.Require().NoError(err)
		s.Equal(models.ActionInserted, res.Action)
		s.Equal("9988776655", *res.Lead.PhoneNumber)

		stored, err := s.service.Get(s.ctx, res.Lead.LeadID)
		s.Require().NoError(err)
		s.Equal(models.EmploymentSalaried, *stored.EmploymentType)
	})
}

func (s *UpsertSuite) TestUpdate() {
	lead := s.upsert(identity.Row{Email: str("raj@example.com"), Phone: str("9876543210")}, "PL", "WEB").Lead

	s.Run("re-normalizes identifiers and grows seen sets", func() {
		updated, err := s.service.Update(s.ctx, lead.LeadID, models.LeadPatch{
			Email:    str("RAJ.K@Example.com"),
			SourceID: str("branch"),
		})
		s.Require().NoError(err)
		s.Equal("raj.k@example.com", *updated.Email)
		s.Equal(id.SourceID("BRANCH"), updated.SourceID)
		s.Equal([]string{"WEB", "BRANCH"}, updated.SourcesSeen)
	})

	s.Run("cannot clear the last identifier", func() {
		_, err := s.service.Update(s.ctx, lead.LeadID, models.LeadPatch{Email: str(""), PhoneNumber: str("")})
		s.Require().ErrorIs(err, models.ErrMissingIdentifier)
	})

	s.Run("unknown source is rejected", func() {
		_, err := s.service.Update(s.ctx, lead.LeadID, models.LeadPatch{SourceID: str("NOWHERE")})
		s.Require().Error(err)
		s.Contains(err.Error(), "Source 'NOWHERE' not found")
	})

	s.Run("unknown lead is not found", func() {
		_, err := s.service.Update(s.ctx, id.NewLeadID(), models.LeadPatch{Name: str("x")})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *UpsertSuite) TestDeleteHistoryAndScore() {
	lead := s.upsert(identity.Row{Name: str("Raj"), Email: str("raj@example.com")}, "PL", "WEB").Lead
	s.upsert(identity.Row{Email: str("raj@example.com")}, "CC", "BRANCH")

	history, err := s.service.History(s.ctx, lead.LeadID)
	s.Require().NoError(err)
	s.Len(history.MergedFrom, 2)
	s.Equal([]string{"PL", "CC"}, history.ProductsSeen)

	scored, result, err := s.service.Score(s.ctx, lead.LeadID)
	s.Require().NoError(err)
	s.InDelta(0.6, result.Score, 1e-9)
	s.Require().NotNil(scored.LeadScore)
	s.InDelta(0.6, *scored.LeadScore, 1e-9)

	s.Require().NoError(s.service.Delete(s.ctx, lead.LeadID))
	err = s.service.Delete(s.ctx, lead.LeadID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Len(s.recorder.OfType(events.TypeLeadDeleted), 1)
}

func (s *UpsertSuite) TestList() {
	for i, phone := range []string{"9000000001", "9000000002", "9000000003"} {
		pID := id.ProductID("PL")
		if i == 2 {
			pID = "CC"
		}
		s.upsert(identity.Row{Phone: str(phone)}, pID, "WEB")
	}

	page, err := s.service.List(s.ctx, models.ListFilter{PID: "PL", Limit: 1, Page: 2})
	s.Require().NoError(err)
	s.Equal(2, page.Total)
	s.Equal(2, page.TotalPages)
	s.Require().Len(page.Leads, 1)
	s.Equal("9000000002", *page.Leads[0].PhoneNumber)

	page, err = s.service.List(s.ctx, models.ListFilter{Limit: 1000})
	s.Require().NoError(err)
	s.Equal(100, page.Limit)
	s.Len(page.Leads, 3)
}

// slowLookupStore delays email lookups so concurrent upserts all resolve the
// same stored lead before any of them writes.
type slowLookupStore struct {
	*store.InMemory
	delay time.Duration
}

func (s slowLookupStore) FindByEmail(ctx context.Context, email string) (*models.Lead, error) {
	time.Sleep(s.delay)
	return s.InMemory.FindByEmail(ctx, email)
}

func (s *UpsertSuite) TestConcurrentMergesKeepEveryRecord() {
	const writers = 20
	s.upsert(identity.Row{Email: str("x@example.com")}, "PL", "WEB")

	svc := New(slowLookupStore{InMemory: s.store, delay: 5 * time.Millisecond}, staticCatalog{},
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	var g errgroup.Group
	for i := 0; i < writers; i++ {
		g.Go(func() error {
			res, err := svc.Upsert(s.ctx, models.UpsertInput{
				Row:      identity.Row{Email: str("x@example.com")},
				PID:      "CC",
				SourceID: "BRANCH",
			})
			if err != nil {
				return err
			}
			if res.Action != models.ActionMerged {
				return fmt.Errorf("unexpected action %s", res.Action)
			}
			return nil
		})
	}
	s.Require().NoError(g.Wait())

	lead, err := s.store.FindByEmail(s.ctx, "x@example.com")
	s.Require().NoError(err)
	s.Len(lead.MergedFrom, writers+1)
	s.Equal([]string{"WEB", "BRANCH"}, lead.SourcesSeen)
	s.Equal([]string{"PL", "CC"}, lead.ProductsSeen)

	count, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}
