package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"leadhub/internal/lead/models"
	"leadhub/internal/lead/service"
	"leadhub/internal/lead/store"
	id "leadhub/pkg/domain"
)

type catalogStub struct{}

func (catalogStub) ProductExists(_ context.Context, pID id.ProductID) (bool, error) {
	return pID == "PL", nil
}

func (catalogStub) SourceExists(_ context.Context, sourceID id.SourceID) (bool, error) {
	return sourceID == "WEB", nil
}

type HandlerSuite struct {
	suite.Suite
	router chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(store.NewInMemory(), catalogStub{}, service.WithLogger(logger))
	s.router = chi.NewRouter()
	New(svc, logger, nil).Register(s.router)
}

func (s *HandlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) create(body string) *models.Lead {
	rec := s.do(http.MethodPost, "/api/leads", body)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var res models.UpsertResult
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &res))
	return res.Lead
}

func (s *HandlerSuite) TestCreate() {
	s.Run("creates a normalized lead", func() {
		lead := s.create(`{"name":" Raj ","phone_number":"+91-9876543210","pId":"pl","sourceId":"web"}`)
		s.Equal("Raj", *lead.Name)
		s.Equal("9876543210", *lead.PhoneNumber)
		s.Equal(id.ProductID("PL"), lead.PID)
	})

	s.Run("requires an identifier", func() {
		rec := s.do(http.MethodPost, "/api/leads", `{"name":"Raj","pId":"PL"}`)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "At least one identifier")
	})

	s.Run("unknown product is a bad request", func() {
		rec := s.do(http.MethodPost, "/api/leads", `{"email":"a@b.co","pId":"XX","sourceId":"WEB"}`)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "Product 'XX' not found")
	})

	s.Run("rejects bad employment type", func() {
		rec := s.do(http.MethodPost, "/api/leads", `{"email":"a@b.co","employmentType":"pirate"}`)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "Invalid employmentType")
	})
}

func (s *HandlerSuite) TestReadUpdateDelete() {
	lead := s.create(`{"email":"raj@example.com","pId":"PL","sourceId":"WEB"}`)
	path := "/api/leads/" + lead.LeadID.String()

	rec := s.do(http.MethodGet, path, "")
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodPut, path, `{"name":"Raj Kumar"}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var updated models.Lead
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &updated))
	s.Equal("Raj Kumar", *updated.Name)

	rec = s.do(http.MethodGet, path+"/history", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"merged_from"`)

	rec = s.do(http.MethodPost, path+"/score", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	var score scoreResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &score))
	s.InDelta(0.4, score.LeadScore, 1e-9)

	rec = s.do(http.MethodDelete, path, "")
	s.Equal(http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, path, "")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerSuite) TestInvalidIDAndList() {
	rec := s.do(http.MethodGet, "/api/leads/not-a-uuid", "")
	s.Equal(http.StatusBadRequest, rec.Code)

	s.create(`{"email":"one@example.com","pId":"PL","sourceId":"WEB"}`)
	s.create(`{"email":"two@example.com","pId":"PL","sourceId":"WEB"}`)

	rec = s.do(http.MethodGet, "/api/leads?pId=pl&limit=1", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	var page models.Page
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &page))
	s.Equal(2, page.Total)
	s.Len(page.Leads, 1)
}
