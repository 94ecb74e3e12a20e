package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	certmodels "securevault/internal/certificate/models"
	"securevault/internal/verification/metrics"
	"securevault/internal/verification/models"
	dErrors "securevault/pkg/domain-errors"
	"securevault/pkg/platform/sentinel"
	"securevault/pkg/requestcontext"
)

// CertificateReader is the read-only slice of the certificate store the
// verifier needs.
type CertificateReader interface {
	FindByID(ctx context.Context, uniqueID string) (*certmodels.Certificate, error)
}

// Log is the append-only verification history.
type Log interface {
	Append(ctx context.Context, event models.Event) error
	Recent(ctx context.Context, limit int) ([]models.Event, error)
	All(ctx context.Context) ([]models.Event, error)
}

// Service resolves candidate certificate IDs and records every attempt.
type Service struct {
	certs   CertificateReader
	log     Log
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a verification Service.
func New(certs CertificateReader, log Log, opts ...Option) *Service {
	s := &Service{certs: certs, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify resolves queriedID against the certificate store and appends exactly
// one event to the history, valid or not. Empty or whitespace-only input is a
// normal not-found lookup and is still logged. The store read and the log
// append are sequential, not jointly atomic; a delete racing a verify may
// yield a stale-but-logged result, which is acceptable because the snapshot
// is informational.
func (s *Service) Verify(ctx context.Context, queriedID string) (*models.Result, error) {
	start := time.Now()

	cert, err := s.certs.FindByID(ctx, queriedID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		// Couldn't check: distinct from "doesn't exist", and no event is
		// logged because no verdict was reached.
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "certificate store unreachable")
	}

	result := &models.Result{Valid: cert != nil, Certificate: cert}

	event := models.Event{
		ID:          uuid.New(),
		QueriedID:   queriedID,
		Valid:       result.Valid,
		VerifiedAt:  requestcontext.Now(ctx),
		Certificate: models.SnapshotOf(cert),
	}
	if err := s.log.Append(ctx, event); err != nil {
		// The audit trail is part of the contract; a verify that cannot be
		// logged fails rather than silently dropping the entry.
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "verification log unreachable")
	}

	if s.metrics != nil {
		if result.Valid {
			s.metrics.VerificationsValid.Inc()
		} else {
			s.metrics.VerificationsInvalid.Inc()
		}
		s.metrics.VerifyDuration.Observe(time.Since(start).Seconds())
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "certificate verification",
			"request_id", requestcontext.RequestID(ctx),
			"queried_id", queriedID,
			"valid", result.Valid,
		)
	}

	return result, nil
}

// History returns verification events, most recent first. limit <= 0 returns
// everything the log retains.
func (s *Service) History(ctx context.Context, limit int) ([]models.Event, error) {
	var (
		events []models.Event
		err    error
	)
	if limit > 0 {
		events, err = s.log.Recent(ctx, limit)
	} else {
		events, err = s.log.All(ctx)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "verification log unreachable")
	}
	return events, nil
}
