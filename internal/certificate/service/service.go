package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"securevault/internal/audit"
	"securevault/internal/certificate/certid"
	"securevault/internal/certificate/metrics"
	"securevault/internal/certificate/models"
	dErrors "securevault/pkg/domain-errors"
	"securevault/pkg/platform/sentinel"
	"securevault/pkg/requestcontext"
)

// maxGenerateAttempts bounds ID regeneration on collision before the issue
// attempt is reported as failed. The 4-digit suffix space is narrow, so
// collisions are expected under load for a busy student.
const maxGenerateAttempts = 5

// CertificateStore is the persistence boundary for certificate records.
type CertificateStore interface {
	Create(ctx context.Context, cert *models.Certificate) error
	FindByID(ctx context.Context, uniqueID string) (*models.Certificate, error)
	ListByStudent(ctx context.Context, studentID string) ([]*models.Certificate, error)
	ListAll(ctx context.Context) ([]*models.Certificate, error)
	Update(ctx context.Context, cert *models.Certificate) error
	Delete(ctx context.Context, uniqueID string) (bool, error)
}

// AuditPublisher records administrative actions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service orchestrates certificate issuance and administration.
type Service struct {
	certs         CertificateStore
	verifyBaseURL string
	generate      func(studentID string) string
	logger        *slog.Logger
	audit         AuditPublisher
	metrics       *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.audit = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithGenerator overrides the certificate ID generator. Tests use this to
// force collisions.
func WithGenerator(generate func(studentID string) string) Option {
	return func(s *Service) { s.generate = generate }
}

// New constructs a Service. verifyBaseURL is the public verification page the
// QR collaborator links to.
func New(certs CertificateStore, verifyBaseURL string, opts ...Option) *Service {
	s := &Service{
		certs:         certs,
		verifyBaseURL: verifyBaseURL,
		generate:      certid.Generate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// VerificationURL derives the scannable link for a certificate ID.
func (s *Service) VerificationURL(uniqueID string) string {
	return fmt.Sprintf("%s?certId=%s", s.verifyBaseURL, url.QueryEscape(uniqueID))
}

// Issue validates the request, allocates a unique certificate ID, and
// persists the record. On ID collision the generator is retried up to
// maxGenerateAttempts before the issue fails.
func (s *Service) Issue(ctx context.Context, req *models.IssueRequest) (*models.Certificate, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	issuedAt := requestcontext.Now(ctx)

	// An explicitly supplied ID gets a single attempt; only generated IDs
	// are retried.
	if req.UniqueID != "" {
		cert, err := s.createOnce(ctx, req, req.UniqueID, issuedAt)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeConflict) {
				return nil, dErrors.New(dErrors.CodeConflict, "certificate id already exists")
			}
			return nil, err
		}
		s.afterIssue(ctx, cert)
		return cert, nil
	}

	for attempt := 1; attempt <= maxGenerateAttempts; attempt++ {
		cert, err := s.createOnce(ctx, req, s.generate(req.StudentID), issuedAt)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeConflict) {
				if s.metrics != nil {
					s.metrics.IssueIDCollisions.Inc()
				}
				continue
			}
			return nil, err
		}
		s.afterIssue(ctx, cert)
		return cert, nil
	}

	if s.metrics != nil {
		s.metrics.IssueRetriesExhausted.Inc()
	}
	if s.logger != nil {
		s.logger.ErrorContext(ctx, "issuance failed after exhausting id generation retries",
			"student_id", req.StudentID,
			"attempts", maxGenerateAttempts,
		)
	}
	return nil, dErrors.New(dErrors.CodeConflict, "issuance failed: could not allocate a unique certificate id")
}

func (s *Service) createOnce(ctx context.Context, req *models.IssueRequest, uniqueID string, issuedAt time.Time) (*models.Certificate, error) {
	cert, err := models.NewCertificate(
		uniqueID,
		req.StudentID,
		req.StudentName,
		req.Department,
		req.CertificateTitle,
		req.FileReference,
		s.VerificationURL(uniqueID),
		issuedAt,
	)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	if err := s.certs.Create(ctx, cert); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "duplicate certificate id")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "certificate store unreachable")
	}
	return cert, nil
}

func (s *Service) afterIssue(ctx context.Context, cert *models.Certificate) {
	if s.metrics != nil {
		s.metrics.CertificatesIssued.Inc()
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "certificate issued",
			"request_id", requestcontext.RequestID(ctx),
			"unique_id", cert.UniqueID,
			"student_id", cert.StudentID,
			"department", cert.Department,
		)
	}
	if s.audit != nil {
		s.audit.Emit(ctx, audit.Event{
			Action:    audit.ActionCertificateIssued,
			Subject:   cert.UniqueID,
			StudentID: cert.StudentID,
		})
	}
}

// Get fetches a certificate by its uniqueId.
func (s *Service) Get(ctx context.Context, uniqueID string) (*models.Certificate, error) {
	cert, err := s.certs.FindByID(ctx, uniqueID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "certificate not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "certificate store unreachable")
	}
	return cert, nil
}

// List returns certificates matching the filter in insertion order. An empty
// filter returns everything; no matches is an empty slice, not an error.
func (s *Service) List(ctx context.Context, filter models.Filter) ([]*models.Certificate, error) {
	var (
		certs []*models.Certificate
		err   error
	)
	if filter.StudentID != "" {
		certs, err = s.certs.ListByStudent(ctx, filter.StudentID)
	} else {
		certs, err = s.certs.ListAll(ctx)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "certificate store unreachable")
	}
	if filter.Department == "" {
		return certs, nil
	}
	filtered := certs[:0]
	for _, cert := range certs {
		if filter.Matches(cert) {
			filtered = append(filtered, cert)
		}
	}
	return filtered, nil
}

// Update applies field corrections to an existing certificate. The uniqueId
// and verification URL are immutable.
func (s *Service) Update(ctx context.Context, uniqueID string, patch *models.Patch) (*models.Certificate, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	cert, err := s.Get(ctx, uniqueID)
	if err != nil {
		return nil, err
	}
	patch.Apply(cert)
	if err := s.certs.Update(ctx, cert); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "certificate not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "certificate store unreachable")
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "certificate updated",
			"request_id", requestcontext.RequestID(ctx),
			"unique_id", cert.UniqueID,
		)
	}
	if s.audit != nil {
		s.audit.Emit(ctx, audit.Event{
			Action:    audit.ActionCertificateUpdated,
			Subject:   cert.UniqueID,
			StudentID: cert.StudentID,
		})
	}
	return cert, nil
}

// Remove deletes a certificate. Removing a missing certificate reports
// false without error; subsequent verifications of the ID come back invalid
// while existing verification snapshots stay intact.
func (s *Service) Remove(ctx context.Context, uniqueID string) (bool, error) {
	removed, err := s.certs.Delete(ctx, uniqueID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "certificate store unreachable")
	}
	if removed {
		if s.metrics != nil {
			s.metrics.CertificatesDeleted.Inc()
		}
		if s.logger != nil {
			s.logger.InfoContext(ctx, "certificate deleted",
				"request_id", requestcontext.RequestID(ctx),
				"unique_id", uniqueID,
			)
		}
		if s.audit != nil {
			s.audit.Emit(ctx, audit.Event{
				Action:  audit.ActionCertificateDeleted,
				Subject: uniqueID,
			})
		}
	}
	return removed, nil
}
