//go:build integration

package certificate_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"securevault/internal/certificate/models"
	"securevault/internal/certificate/store/certificate"
	"securevault/pkg/platform/sentinel"
	"securevault/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *certificate.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = certificate.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "certificates"))
}

func newTestCertificate(uniqueID, studentID string) *models.Certificate {
	return &models.Certificate{
		UniqueID:         uniqueID,
		StudentID:        studentID,
		StudentName:      "Asha Rao",
		Department:       "CS",
		CertificateTitle: "BSc Computer Science",
		FileReference:    "2026-01-05/transcript.pdf",
		IssuedAt:         time.Now().UTC().Truncate(time.Microsecond),
		VerificationURL:  "https://securevault.verifier/verify?certId=" + uniqueID,
	}
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	cert := newTestCertificate("CERT-22CS123-1234", "22CS123")

	s.Require().NoError(s.store.Create(ctx, cert))

	got, err := s.store.FindByID(ctx, cert.UniqueID)
	s.Require().NoError(err)
	s.Equal(cert.UniqueID, got.UniqueID)
	s.Equal(cert.StudentID, got.StudentID)
	s.Equal(cert.VerificationURL, got.VerificationURL)
	s.True(cert.IssuedAt.Equal(got.IssuedAt))
}

func (s *PostgresStoreSuite) TestFindMissingIsNotFound() {
	_, err := s.store.FindByID(context.Background(), "CERT-missing-0000")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDuplicateIDIsConflict() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, newTestCertificate("CERT-22CS123-1234", "22CS123")))

	err := s.store.Create(ctx, newTestCertificate("CERT-22CS123-1234", "22CS123"))
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

// TestConcurrentDuplicateCreate verifies the unique constraint admits exactly
// one writer for a contested ID.
func (s *PostgresStoreSuite) TestConcurrentDuplicateCreate() {
	ctx := context.Background()
	const goroutines = 50

	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Create(ctx, newTestCertificate("CERT-22CS123-7777", "22CS123"))
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load())
	s.Equal(int32(goroutines-1), conflictCount.Load())
}

func (s *PostgresStoreSuite) TestListOrdering() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, newTestCertificate("CERT-22CS123-1111", "22CS123")))
	s.Require().NoError(s.store.Create(ctx, newTestCertificate("CERT-22EC001-2222", "22EC001")))
	s.Require().NoError(s.store.Create(ctx, newTestCertificate("CERT-22CS123-3333", "22CS123")))

	all, err := s.store.ListAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("CERT-22CS123-1111", all[0].UniqueID)
	s.Equal("CERT-22CS123-3333", all[2].UniqueID)

	mine, err := s.store.ListByStudent(ctx, "22CS123")
	s.Require().NoError(err)
	s.Require().Len(mine, 2)
	s.Equal("CERT-22CS123-1111", mine[0].UniqueID)
}

func (s *PostgresStoreSuite) TestUpdate() {
	ctx := context.Background()
	cert := newTestCertificate("CERT-22CS123-1234", "22CS123")
	s.Require().NoError(s.store.Create(ctx, cert))

	cert.CertificateTitle = "BSc (Honours)"
	s.Require().NoError(s.store.Update(ctx, cert))

	got, err := s.store.FindByID(ctx, cert.UniqueID)
	s.Require().NoError(err)
	s.Equal("BSc (Honours)", got.CertificateTitle)

	missing := newTestCertificate("CERT-missing-0000", "22CS123")
	s.Require().ErrorIs(s.store.Update(ctx, missing), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDelete() {
	ctx := context.Background()
	cert := newTestCertificate("CERT-22CS123-1234", "22CS123")
	s.Require().NoError(s.store.Create(ctx, cert))

	removed, err := s.store.Delete(ctx, cert.UniqueID)
	s.Require().NoError(err)
	s.True(removed)

	removed, err = s.store.Delete(ctx, cert.UniqueID)
	s.Require().NoError(err)
	s.False(removed, "deleting a missing certificate is not an error")
}
