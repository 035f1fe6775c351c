package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	cfmodels "leadhub/internal/canonicalfield/models"
	cfstore "leadhub/internal/canonicalfield/store"
	"leadhub/internal/dedup/lock"
	"leadhub/internal/dedup/metrics"
	"leadhub/internal/dedup/models"
	"leadhub/internal/dedup/rules"
	"leadhub/internal/dedup/service/mocks"
	leadmodels "leadhub/internal/lead/models"
	leadstore "leadhub/internal/lead/store"
	productmodels "leadhub/internal/product/models"
	productstore "leadhub/internal/product/store"
	id "leadhub/pkg/domain"
	dErrors "leadhub/pkg/domain-errors"
	"leadhub/pkg/platform/events"
	"leadhub/pkg/requestcontext"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// failingProductLeads breaks product lead lookups for one product.
type failingProductLeads struct {
	*leadstore.InMemory
	broken id.ProductID
}

func (f failingProductLeads) FindByPID(ctx context.Context, pID id.ProductID) ([]*leadmodels.Lead, error) {
	if pID == f.broken {
		return nil, errors.New("connection reset")
	}
	return f.InMemory.FindByPID(ctx, pID)
}

type invalidations []id.ProductID

func (i *invalidations) Invalidate(pID id.ProductID) { *i = append(*i, pID) }

type ServiceSuite struct {
	suite.Suite
	ctx         context.Context
	leads       *leadstore.InMemory
	products    *productstore.ProductMemory
	sources     *productstore.SourceMemory
	fields      *cfstore.InMemory
	locker      *lock.Memory
	recorder    *events.Recorder
	invalidated *invalidations
	service     *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), t0.Add(48*time.Hour))
	s.leads = leadstore.NewInMemory()
	s.products = productstore.NewProductMemory()
	s.sources = productstore.NewSourceMemory()
	s.fields = cfstore.NewInMemory()
	s.locker = lock.NewMemory()
	s.recorder = events.NewRecorder()
	s.invalidated = &invalidations{}
	s.service = s.newService(s.leads)
}

func (s *ServiceSuite) newService(leads LeadStore) *Service {
	return New(leads, s.products, s.sources, s.fields, rules.NewMemory(),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(metrics.NewWith(prometheus.NewRegistry())),
		WithEventPublisher(s.recorder),
		WithLocker(s.locker),
		WithCacheInvalidator(s.invalidated),
	)
}

func str(v string) *string { return &v }

func (s *ServiceSuite) seedLead(name string, offset time.Duration, pID id.ProductID, email, phone, aadhar string) *leadmodels.Lead {
	created := t0.Add(offset)
	l := &leadmodels.Lead{
		LeadID:       id.NewLeadID(),
		Name:         str(name),
		SourceID:     "WEB",
		PID:          pID,
		SourcesSeen:  []string{"WEB"},
		ProductsSeen: []string{string(pID)},
		MergedFrom:   []leadmodels.MergeRecord{{Timestamp: created, SourceID: "WEB", PID: pID}},
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	if email != "" {
		l.Email = str(email)
	}
	if phone != "" {
		l.PhoneNumber = str(phone)
	}
	if aadhar != "" {
		l.AadharNumber = str(aadhar)
	}
	s.Require().NoError(s.leads.Save(s.ctx, l))
	return l
}

func (s *ServiceSuite) seedProduct(pID id.ProductID, name string, offset time.Duration, fields ...id.IdentifierField) {
	s.Require().NoError(s.products.Save(s.ctx, &productmodels.Product{
		PID:                 pID,
		PName:               name,
		DeduplicationFields: fields,
		CreatedAt:           t0.Add(offset),
		UpdatedAt:           t0.Add(offset),
	}))
}

func (s *ServiceSuite) exists(leadID id.LeadID) bool {
	_, err := s.leads.FindByLeadID(s.ctx, leadID)
	return err == nil
}

func (s *ServiceSuite) TestExecute() {
	s.Run("email only groups the shared email and leaves the rest", func() {
		a := s.seedLead("A", 0, "PL", "x@example.com", "", "")
		b := s.seedLead("B", time.Hour, "PL", "x@example.com", "", "")
		c := s.seedLead("C", 2*time.Hour, "PL", "", "9876543210", "")

		stats, err := s.service.Execute(s.ctx, &models.Config{UseEmail: true})
		s.Require().NoError(err)
		s.Equal(3, stats.TotalLeads)
		s.Equal(1, stats.DuplicatesFound)
		s.Equal(1, stats.MergedCount)
		s.Equal(2, stats.FinalCount)
		s.Require().Len(stats.MergeDetails, 1)
		s.Equal(a.LeadID, stats.MergeDetails[0].KeptLeadID)
		s.Equal([]id.LeadID{b.LeadID}, stats.MergeDetails[0].MergedLeadIDs)
		s.Equal("x@example.com", *stats.MergeDetails[0].Email)

		survivor, err := s.leads.FindByLeadID(s.ctx, a.LeadID)
		s.Require().NoError(err)
		s.Len(survivor.MergedFrom, 2)
		s.Equal(t0.Add(48*time.Hour), survivor.MergedFrom[1].Timestamp)
		s.False(s.exists(b.LeadID))
		s.True(s.exists(c.LeadID))

		s.Len(s.recorder.OfType(events.TypeDedupCompleted), 1)
	})
}

func (s *ServiceSuite) TestExecuteUsesStoredRules() {
	s.seedLead("A", 0, "PL", "x@example.com", "", "")
	s.seedLead("B", time.Hour, "PL", "x@example.com", "", "")

	off := false
	cfg, err := s.service.UpdateRules(s.ctx, models.ConfigPatch{UseEmail: &off})
	s.Require().NoError(err)
	s.Equal(models.Config{UsePhone: true, UseAadhar: true}, cfg)

	rules, err := s.service.Rules(s.ctx)
	s.Require().NoError(err)
	s.Equal(cfg, rules)

	stats, err := s.service.Execute(s.ctx, nil)
	s.Require().NoError(err)
	s.Equal(0, stats.MergedCount)
	s.Equal(2, stats.FinalCount)
	s.Empty(stats.MergeDetails)
}

func (s *ServiceSuite) TestOverlappingGroupsMergeOnce() {
	a := s.seedLead("A", 0, "PL", "x@example.com", "", "")
	b := s.seedLead("B", time.Hour, "PL", "x@example.com", "9876543210", "")
	c := s.seedLead("C", 2*time.Hour, "PL", "", "9876543210", "")

	stats, err := s.service.Execute(s.ctx, nil)
	s.Require().NoError(err)
	s.Equal(2, stats.DuplicatesFound)
	s.Equal(1, stats.MergedCount)
	s.Equal(2, stats.FinalCount)
	s.False(s.exists(b.LeadID))
	s.True(s.exists(c.LeadID))

	survivor, err := s.leads.FindByLeadID(s.ctx, a.LeadID)
	s.Require().NoError(err)
	s.Equal("9876543210", *survivor.PhoneNumber)

	stats, err = s.service.Execute(s.ctx, nil)
	s.Require().NoError(err)
	s.Equal(1, stats.MergedCount)
	s.Equal(1, stats.FinalCount)
	s.False(s.exists(c.LeadID))
}

func (s *ServiceSuite) TestExecuteForProduct() {
	s.seedProduct("PL", "Personal Loan", 0, id.IdentifierEmail)
	s.seedProduct("CC", "Credit Card", 0)
	l1 := s.seedLead("L1", 0, "PL", "x@example.com", "", "")
	l2 := s.seedLead("L2", time.Hour, "PL", "x@example.com", "", "")
	l3 := s.seedLead("L3", 2*time.Hour, "CC", "x@example.com", "", "")

	s.Run("only the product's leads are merged", func() {
		stats, err := s.service.ExecuteForProduct(s.ctx, " pl ")
		s.Require().NoError(err)
		s.Equal(2, stats.TotalLeads)
		s.Equal(1, stats.MergedCount)
		s.Equal(2, stats.FinalCount)
		s.True(s.exists(l1.LeadID))
		s.False(s.exists(l2.LeadID))
		s.True(s.exists(l3.LeadID))
	})

	s.Run("unknown product is not found", func() {
		_, err := s.service.ExecuteForProduct(s.ctx, "zz")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal("Product not found: zz", dErrors.Message(err))
	})

	s.Run("blank product is a bad request", func() {
		_, err := s.service.ExecuteForProduct(s.ctx, "  ")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *ServiceSuite) TestExecuteForAllProductsIsolatesFailures() {
	s.seedProduct("PL", "Personal Loan", 0)
	s.seedProduct("CC", "Credit Card", 0)
	s.seedLead("P1", 0, "PL", "p@example.com", "", "")
	s.seedLead("P2", time.Hour, "PL", "p@example.com", "", "")
	s.seedLead("C1", 0, "CC", "c@example.com", "", "")
	s.seedLead("C2", time.Hour, "CC", "c@example.com", "", "")

	svc := s.newService(failingProductLeads{InMemory: s.leads, broken: "PL"})
	outcomes, err := svc.ExecuteForAllProducts(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(outcomes, 2)

	s.Equal(id.ProductID("PL"), outcomes[0].PID)
	s.Nil(outcomes[0].Stats)
	s.Equal("Deduplication failed", outcomes[0].Error)

	s.Equal(id.ProductID("CC"), outcomes[1].PID)
	s.Require().NotNil(outcomes[1].Stats)
	s.Equal(1, outcomes[1].Stats.MergedCount)

	summary := models.Summarize(outcomes, 3)
	s.Equal(models.Summary{TotalLeadsBefore: 2, DuplicatesFound: 1, MergedCount: 1, FinalLeadCount: 3}, summary)

	byProduct := models.ByProduct(outcomes)
	s.Require().Len(byProduct, 2)
	s.Nil(byProduct["PL"])
	s.Equal(1, byProduct["CC"].MergedCount)
	s.Equal(map[id.ProductID]string{"PL": "Deduplication failed"}, models.Failures(outcomes))
}

func (s *ServiceSuite) TestExecuteAfterUpload() {
	s.seedProduct("PL", "Personal Loan", 0)
	s.seedLead("A", 0, "PL", "", "9876543210", "")
	s.seedLead("B", time.Hour, "PL", "", "9876543210", "")
	s.seedLead("C", 0, "UNLISTED", "", "9876543210", "")

	summary, err := s.service.ExecuteAfterUpload(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, summary.TotalLeadsBefore)
	s.Equal(1, summary.MergedCount)
	s.Equal(2, summary.FinalLeadCount)
}

func (s *ServiceSuite) TestExecuteFromCanonicalFields() {
	s.Require().NoError(s.fields.Create(s.ctx, &cfmodels.CanonicalField{
		FieldName: "mobile", FieldType: cfmodels.TypeString, IsActive: true, Version: "v1",
	}))
	s.seedLead("A", 0, "PL", "x@example.com", "9876543210", "")
	s.seedLead("B", time.Hour, "PL", "x@example.com", "", "")
	s.seedLead("C", 2*time.Hour, "PL", "", "9876543210", "")

	stats, err := s.service.ExecuteFromCanonicalFields(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, stats.MergedCount)
	s.Equal(2, stats.FinalCount)
}

func (s *ServiceSuite) TestRunWhileLockedIsConflict() {
	h, err := s.locker.Acquire(s.ctx, lock.DedupKey, time.Minute)
	s.Require().NoError(err)

	_, err = s.service.Execute(s.ctx, nil)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	_, err = s.service.ConsolidateProducts(s.ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	s.Require().NoError(s.locker.Release(s.ctx, h))
	_, err = s.service.Execute(s.ctx, nil)
	s.NoError(err)
}

func (s *ServiceSuite) TestStats() {
	s.seedLead("A", 0, "PL", "x@example.com", "9876543210", "")
	s.seedLead("B", 0, "PL", "x@example.com", "9876543211", "")
	s.seedLead("C", 0, "PL", "y@example.com", "9876543211", "123456789012")
	s.seedLead("D", 0, "PL", "y@example.com", "", "")

	info, err := s.service.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(4, info.TotalLeads)
	s.Equal(3, info.PotentialDuplicates)
	s.Equal(map[string]int{"email": 2, "phone_number": 1, "aadhar_number": 0}, info.ByIdentifier)
	s.Equal(models.DefaultConfig(), info.Config)
}

func (s *ServiceSuite) TestProductConfig() {
	s.seedProduct("PL", "Personal Loan", 0)

	view, err := s.service.ProductConfig(s.ctx, "pl")
	s.Require().NoError(err)
	s.Empty(view.DeduplicationFields)
	s.Equal(models.DefaultConfig(), view.ResolvedConfig)

	updated, err := s.service.UpdateProductConfig(s.ctx, "PL", []string{"phone", " ", "phone_number"})
	s.Require().NoError(err)
	s.Equal([]id.IdentifierField{id.IdentifierPhone}, updated.DeduplicationFields)
	s.Equal([]id.ProductID{"PL"}, []id.ProductID(*s.invalidated))

	view, err = s.service.ProductConfig(s.ctx, "PL")
	s.Require().NoError(err)
	s.Equal(models.Config{UsePhone: true}, view.ResolvedConfig)

	_, err = s.service.UpdateProductConfig(s.ctx, "PL", []string{"pan"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.service.ProductConfig(s.ctx, "nope")
	s.Equal("Product not found: nope", dErrors.Message(err))
}

func (s *ServiceSuite) TestConsolidateProducts() {
	s.seedProduct("PL", "Personal Loan", 0)
	s.seedProduct("PL2", " personal loan ", time.Hour)
	s.seedProduct("CC", "Credit Card", 0)
	moved := s.seedLead("A", 0, "PL2", "x@example.com", "", "")
	s.Require().NoError(s.sources.Save(s.ctx, &productmodels.Source{SourceID: "WEB", SourceName: "Web", PID: "PL2"}))

	preview, err := s.service.PreviewProductDuplicates(s.ctx)
	s.Require().NoError(err)
	s.Equal([][]models.ProductPreview{{{PID: "PL", PName: "Personal Loan"}, {PID: "PL2", PName: " personal loan "}}}, preview)

	result, err := s.service.ConsolidateProducts(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, result.TotalProductsBefore)
	s.Equal(1, result.DuplicateGroupsFound)
	s.Equal(1, result.ProductsRemoved)
	s.Equal(2, result.TotalProductsAfter)
	s.Equal([]models.ProductMergeDetail{{
		KeptPID: "PL", KeptPName: "Personal Loan", MergedPIDs: []id.ProductID{"PL2"}, MergedCount: 1, LeadsMoved: 1,
	}}, result.MergeDetails)

	lead, err := s.leads.FindByLeadID(s.ctx, moved.LeadID)
	s.Require().NoError(err)
	s.Equal(id.ProductID("PL"), lead.PID)
	s.Equal([]string{"PL"}, lead.ProductsSeen)

	source, err := s.sources.FindByID(s.ctx, "WEB")
	s.Require().NoError(err)
	s.Equal(id.ProductID("PL"), source.PID)

	_, err = s.products.FindByPID(s.ctx, "PL2")
	s.Error(err)
	s.ElementsMatch([]id.ProductID{"PL", "PL2"}, []id.ProductID(*s.invalidated))
	s.Len(s.recorder.OfType(events.TypeProductsConsolidated), 1)
}

func (s *ServiceSuite) TestMergeGroupFailureIsInternal() {
	ctrl := gomock.NewController(s.T())
	leads := mocks.NewMockLeadStore(ctrl)
	leads.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	svc := New(leads, s.products, s.sources, s.fields, rules.NewMemory(),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	a := &leadmodels.Lead{LeadID: id.NewLeadID(), Email: str("x@example.com"), CreatedAt: t0}
	b := &leadmodels.Lead{LeadID: id.NewLeadID(), Email: str("x@example.com"), CreatedAt: t0.Add(time.Hour)}

	_, err := svc.MergeGroup(s.ctx, []*leadmodels.Lead{a, b})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.Empty(a.MergedFrom, "input leads are left untouched")

	s.Panics(func() { _, _ = svc.MergeGroup(s.ctx, []*leadmodels.Lead{a}) })
}

func (s *ServiceSuite) TestLockFailureIsUnavailable() {
	ctrl := gomock.NewController(s.T())
	locker := mocks.NewMockLocker(ctrl)
	locker.EXPECT().Acquire(gomock.Any(), lock.DedupKey, gomock.Any()).Return(lock.Handle{}, errors.New("redis down"))

	svc := New(s.leads, s.products, s.sources, s.fields, rules.NewMemory(),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithLocker(locker))
	_, err := svc.Execute(s.ctx, nil)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}
