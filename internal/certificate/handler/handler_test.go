package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"securevault/internal/certificate/models"
	certservice "securevault/internal/certificate/service"
	certstore "securevault/internal/certificate/store/certificate"
)

type CertificateHandlerSuite struct {
	suite.Suite
	store  *certstore.InMemory
	router chi.Router
}

func (s *CertificateHandlerSuite) SetupTest() {
	s.store = certstore.NewInMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := certservice.New(s.store, "https://securevault.verifier/verify",
		certservice.WithLogger(logger))

	s.router = chi.NewRouter()
	New(svc, logger).Register(s.router)
}

func TestCertificateHandlerSuite(t *testing.T) {
	suite.Run(t, new(CertificateHandlerSuite))
}

func (s *CertificateHandlerSuite) do(method, target string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *CertificateHandlerSuite) issue(studentID, title string) models.Certificate {
	w := s.do(http.MethodPost, "/api/certificates", IssueRequest{
		StudentID:        studentID,
		StudentName:      "Asha Rao",
		Department:       "CS",
		CertificateTitle: title,
	})
	s.Require().Equal(http.StatusCreated, w.Code)
	var cert models.Certificate
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &cert))
	return cert
}

func (s *CertificateHandlerSuite) TestIssue() {
	cert := s.issue("22CS123", "BSc Computer Science")

	s.Regexp(`^CERT-22CS123-\d{4}$`, cert.UniqueID)
	s.Equal("22CS123", cert.StudentID)
	s.Contains(cert.VerificationURL, "certId=")
	s.False(cert.IssuedAt.IsZero())
}

func (s *CertificateHandlerSuite) TestIssueValidation() {
	w := s.do(http.MethodPost, "/api/certificates", IssueRequest{
		StudentName: "Asha Rao",
	})
	s.Equal(http.StatusUnprocessableEntity, w.Code)

	var resp map[string]string
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("validation_error", resp["error"])
	s.NotEmpty(resp["error_description"])
}

func (s *CertificateHandlerSuite) TestIssueMalformedBody() {
	req := httptest.NewRequest(http.MethodPost, "/api/certificates", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *CertificateHandlerSuite) TestIssueExplicitIDConflict() {
	first := s.do(http.MethodPost, "/api/certificates", IssueRequest{
		UniqueID:         "CERT-22CS123-1234",
		StudentID:        "22CS123",
		CertificateTitle: "BSc",
	})
	s.Require().Equal(http.StatusCreated, first.Code)

	second := s.do(http.MethodPost, "/api/certificates", IssueRequest{
		UniqueID:         "CERT-22CS123-1234",
		StudentID:        "22CS123",
		CertificateTitle: "BSc",
	})
	s.Equal(http.StatusConflict, second.Code)
}

func (s *CertificateHandlerSuite) TestGet() {
	cert := s.issue("22CS123", "BSc")

	w := s.do(http.MethodGet, "/api/certificates/"+cert.UniqueID, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var got models.Certificate
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	s.Equal(cert.UniqueID, got.UniqueID)
}

func (s *CertificateHandlerSuite) TestGetNotFound() {
	w := s.do(http.MethodGet, "/api/certificates/CERT-missing-0000", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *CertificateHandlerSuite) TestListWithFilters() {
	s.issue("22CS123", "BSc")
	s.issue("22CS123", "Honors")
	s.issue("22EC001", "BTech")

	s.Run("all", func() {
		w := s.do(http.MethodGet, "/api/certificates", nil)
		s.Require().Equal(http.StatusOK, w.Code)
		var certs []models.Certificate
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &certs))
		s.Len(certs, 3)
	})

	s.Run("by student", func() {
		w := s.do(http.MethodGet, "/api/certificates?studentId=22CS123", nil)
		s.Require().Equal(http.StatusOK, w.Code)
		var certs []models.Certificate
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &certs))
		s.Len(certs, 2)
	})

	s.Run("no matches is an empty array", func() {
		w := s.do(http.MethodGet, "/api/certificates?studentId=nobody", nil)
		s.Require().Equal(http.StatusOK, w.Code)
		s.Equal("[]\n", w.Body.String())
	})
}

func (s *CertificateHandlerSuite) TestUpdate() {
	cert := s.issue("22CS123", "BSc")

	title := "BSc (Honours)"
	w := s.do(http.MethodPut, "/api/certificates/"+cert.UniqueID, UpdateRequest{
		CertificateTitle: &title,
	})
	s.Require().Equal(http.StatusOK, w.Code)

	var got models.Certificate
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	s.Equal("BSc (Honours)", got.CertificateTitle)
	s.Equal(cert.UniqueID, got.UniqueID)
	s.Equal(cert.VerificationURL, got.VerificationURL)
}

func (s *CertificateHandlerSuite) TestUpdateEmptyPatch() {
	cert := s.issue("22CS123", "BSc")

	w := s.do(http.MethodPut, "/api/certificates/"+cert.UniqueID, UpdateRequest{})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (s *CertificateHandlerSuite) TestRemove() {
	cert := s.issue("22CS123", "BSc")

	w := s.do(http.MethodDelete, "/api/certificates/"+cert.UniqueID, nil)
	s.Equal(http.StatusNoContent, w.Code)

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/certificates/"+cert.UniqueID, nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, "/api/certificates/"+cert.UniqueID, nil).Code)
}

func TestRequestShapes(t *testing.T) {
	t.Run("issue request trims fields", func(t *testing.T) {
		req := IssueRequest{StudentID: "  22CS123 ", CertificateTitle: " BSc "}
		req.Normalize()
		if req.StudentID != "22CS123" || req.CertificateTitle != "BSc" {
			t.Fatalf("fields not trimmed: %+v", req)
		}
	})
}
