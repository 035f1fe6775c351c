package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"leadhub/internal/identity"
	"leadhub/internal/lead/models"
	"leadhub/internal/lead/service/mocks"
	id "leadhub/pkg/domain"
	dErrors "leadhub/pkg/domain-errors"
	"leadhub/pkg/platform/events"
	"leadhub/pkg/platform/sentinel"
	"leadhub/pkg/requestcontext"
)

type CollaboratorSuite struct {
	suite.Suite
	ctx       context.Context
	ctrl      *gomock.Controller
	store     *mocks.MockStore
	catalog   *mocks.MockCatalog
	publisher *mocks.MockEventPublisher
	service   *Service
}

func TestCollaboratorSuite(t *testing.T) {
	suite.Run(t, new(CollaboratorSuite))
}

func (s *CollaboratorSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.catalog = mocks.NewMockCatalog(s.ctrl)
	s.publisher = mocks.NewMockEventPublisher(s.ctrl)
	s.service = New(s.store, s.catalog,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithEventPublisher(s.publisher),
	)
}

func (s *CollaboratorSuite) TearDownTest() {
	s.ctrl.Finish()
}

func ptr(v string) *string { return &v }

func (s *CollaboratorSuite) TestUpsert() {
	s.Run("lookup failure is internal and nothing is saved", func() {
		s.store.EXPECT().FindByEmail(gomock.Any(), "raj@example.com").Return(nil, errors.New("connection reset"))

		_, err := s.service.Upsert(s.ctx, models.UpsertInput{
			Row:      identity.Row{Email: ptr("raj@example.com")},
			PID:      "PL",
			SourceID: "WEB",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("phone lookup runs after an email miss", func() {
		existing := &models.Lead{
			LeadID:       id.NewLeadID(),
			PhoneNumber:  ptr("9876543210"),
			SourceID:     "WEB",
			PID:          "PL",
			SourcesSeen:  []string{"WEB"},
			ProductsSeen: []string{"PL"},
		}
		gomock.InOrder(
			s.store.EXPECT().FindByEmail(gomock.Any(), "raj@example.com").Return(nil, sentinel.ErrNotFound),
			s.store.EXPECT().FindByPhone(gomock.Any(), "9876543210").Return(existing, nil),
		)
		s.store.EXPECT().Update(gomock.Any(), existing.LeadID, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ id.LeadID, fn func(*models.Lead) error) (*models.Lead, error) {
				l := existing.Clone()
				s.Require().NoError(fn(l))
				s.Equal("raj@example.com", *l.Email)
				s.Equal([]string{"WEB", "BRANCH"}, l.SourcesSeen)
				return l, nil
			})
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e events.Event) error {
			s.Equal(events.TypeLeadUpserted, e.Type)
			s.Equal(existing.LeadID.String(), e.Key)
			return errors.New("broker unavailable")
		})

		result, err := s.service.Upsert(s.ctx, models.UpsertInput{
			Row:      identity.Row{Email: ptr("raj@example.com"), Phone: ptr("9876543210")},
			PID:      "PL",
			SourceID: "BRANCH",
		})
		s.Require().NoError(err, "a failed publish does not fail the upsert")
		s.Equal(models.ActionMerged, result.Action)
	})

	s.Run("save failure is internal", func() {
		s.store.EXPECT().FindByAadhar(gomock.Any(), "123456789012").Return(nil, sentinel.ErrNotFound)
		s.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

		_, err := s.service.Upsert(s.ctx, models.UpsertInput{
			Row:      identity.Row{Aadhar: ptr("123456789012")},
			PID:      "PL",
			SourceID: "WEB",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("merge looks up again when the matched lead is gone", func() {
		gone := &models.Lead{LeadID: id.NewLeadID(), Email: ptr("raj@example.com")}
		survivor := &models.Lead{LeadID: id.NewLeadID(), Email: ptr("raj@example.com")}
		gomock.InOrder(
			s.store.EXPECT().FindByEmail(gomock.Any(), "raj@example.com").Return(gone, nil),
			s.store.EXPECT().Update(gomock.Any(), gone.LeadID, gomock.Any()).Return(nil, sentinel.ErrNotFound),
			s.store.EXPECT().FindByEmail(gomock.Any(), "raj@example.com").Return(survivor, nil),
			s.store.EXPECT().Update(gomock.Any(), survivor.LeadID, gomock.Any()).Return(survivor, nil),
		)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		result, err := s.service.Upsert(s.ctx, models.UpsertInput{
			Row:      identity.Row{Email: ptr("raj@example.com")},
			PID:      "PL",
			SourceID: "WEB",
		})
		s.Require().NoError(err)
		s.Equal(survivor.LeadID, result.Lead.LeadID)
	})
}

func (s *CollaboratorSuite) TestUpdateTranslatesStoreErrors() {
	leadID := id.NewLeadID()
	patch := models.LeadPatch{Name: ptr("Raj Kumar")}

	s.Run("missing lead is not found", func() {
		s.store.EXPECT().Update(gomock.Any(), leadID, gomock.Any()).Return(nil, sentinel.ErrNotFound)
		_, err := s.service.Update(s.ctx, leadID, patch)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("coded errors from the patch keep their code", func() {
		s.store.EXPECT().Update(gomock.Any(), leadID, gomock.Any()).Return(nil, models.ErrMissingIdentifier)
		_, err := s.service.Update(s.ctx, leadID, patch)
		s.True(dErrors.Is(err, dErrors.CodeValidation))
	})

	s.Run("store failure is internal", func() {
		s.store.EXPECT().Update(gomock.Any(), leadID, gomock.Any()).Return(nil, errors.New("deadlock detected"))
		_, err := s.service.Update(s.ctx, leadID, patch)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *CollaboratorSuite) TestCreateChecksCatalogFirst() {
	s.Run("unknown product stops before the store", func() {
		s.catalog.EXPECT().ProductExists(gomock.Any(), id.ProductID("HL")).Return(false, nil)

		_, err := s.service.Create(s.ctx, &models.CreateLeadRequest{
			Email:    ptr("raj@example.com"),
			PID:      "HL",
			SourceID: "WEB",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.Contains(err.Error(), "Product 'HL' not found")
	})

	s.Run("catalog failure is internal", func() {
		s.catalog.EXPECT().ProductExists(gomock.Any(), id.ProductID("PL")).Return(true, nil)
		s.catalog.EXPECT().SourceExists(gomock.Any(), id.SourceID("WEB")).Return(false, errors.New("timeout"))

		_, err := s.service.Create(s.ctx, &models.CreateLeadRequest{
			Email:    ptr("raj@example.com"),
			PID:      "PL",
			SourceID: "WEB",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *CollaboratorSuite) TestListClampsPaging() {
	s.store.EXPECT().List(gomock.Any(), models.ListFilter{PID: "PL", Page: 1, Limit: 100}).Return(nil, 250, nil)

	page, err := s.service.List(s.ctx, models.ListFilter{PID: "PL", Page: 0, Limit: 500})
	s.Require().NoError(err)
	s.Equal(3, page.TotalPages)
	s.Equal(100, page.Limit)
}

func (s *CollaboratorSuite) TestGetTranslatesNotFound() {
	leadID := id.NewLeadID()
	s.store.EXPECT().FindByLeadID(gomock.Any(), leadID).Return(nil, sentinel.ErrNotFound)

	_, err := s.service.Get(s.ctx, leadID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
