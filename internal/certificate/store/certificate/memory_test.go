package certificate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"securevault/internal/certificate/models"
	"securevault/pkg/platform/sentinel"
)

type CertificateStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *CertificateStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestCertificateStoreSuite(t *testing.T) {
	suite.Run(t, new(CertificateStoreSuite))
}

func (s *CertificateStoreSuite) newCertificate(uniqueID, studentID string) *models.Certificate {
	return &models.Certificate{
		UniqueID:         uniqueID,
		StudentID:        studentID,
		StudentName:      "Asha Rao",
		Department:       "CS",
		CertificateTitle: "BSc",
		IssuedAt:         time.Now(),
	}
}

func (s *CertificateStoreSuite) TestCreateAndLookups() {
	s.Run("creates and finds by uniqueId", func() {
		cert := s.newCertificate("CERT-22CS123-1234", "22CS123")
		s.Require().NoError(s.store.Create(s.ctx, cert))

		found, err := s.store.FindByID(s.ctx, cert.UniqueID)
		s.Require().NoError(err)
		s.Equal(cert.StudentID, found.StudentID)
		s.Equal(cert.CertificateTitle, found.CertificateTitle)
	})

	s.Run("returns ErrNotFound for unknown id", func() {
		_, err := s.store.FindByID(s.ctx, "CERT-missing-0000")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned record is a copy", func() {
		cert := s.newCertificate("CERT-22CS124-2000", "22CS124")
		s.Require().NoError(s.store.Create(s.ctx, cert))

		found, err := s.store.FindByID(s.ctx, cert.UniqueID)
		s.Require().NoError(err)
		found.CertificateTitle = "mutated"

		again, err := s.store.FindByID(s.ctx, cert.UniqueID)
		s.Require().NoError(err)
		s.Equal("BSc", again.CertificateTitle)
	})
}

func (s *CertificateStoreSuite) TestDuplicateIDs() {
	cert := s.newCertificate("CERT-22CS123-1234", "22CS123")
	s.Require().NoError(s.store.Create(s.ctx, cert))

	dup := s.newCertificate("CERT-22CS123-1234", "22CS999")
	err := s.store.Create(s.ctx, dup)
	s.Require().ErrorIs(err, sentinel.ErrConflict)

	// Original record untouched by the failed create.
	found, err := s.store.FindByID(s.ctx, cert.UniqueID)
	s.Require().NoError(err)
	s.Equal("22CS123", found.StudentID)
}

func (s *CertificateStoreSuite) TestListOrdering() {
	ids := []string{"CERT-A-1000", "CERT-B-1001", "CERT-A-1002"}
	students := []string{"A", "B", "A"}
	for i, id := range ids {
		s.Require().NoError(s.store.Create(s.ctx, s.newCertificate(id, students[i])))
	}

	s.Run("ListAll preserves insertion order", func() {
		all, err := s.store.ListAll(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(all, 3)
		for i, cert := range all {
			s.Equal(ids[i], cert.UniqueID)
		}
	})

	s.Run("ListByStudent preserves insertion order", func() {
		certs, err := s.store.ListByStudent(s.ctx, "A")
		s.Require().NoError(err)
		s.Require().Len(certs, 2)
		s.Equal("CERT-A-1000", certs[0].UniqueID)
		s.Equal("CERT-A-1002", certs[1].UniqueID)
	})

	s.Run("ListByStudent is empty for unknown student", func() {
		certs, err := s.store.ListByStudent(s.ctx, "nobody")
		s.Require().NoError(err)
		s.Empty(certs)
	})
}

func (s *CertificateStoreSuite) TestUpdate() {
	s.Run("persists field corrections", func() {
		cert := s.newCertificate("CERT-22CS123-1234", "22CS123")
		s.Require().NoError(s.store.Create(s.ctx, cert))

		cert.CertificateTitle = "MSc"
		cert.Department = "Mathematics"
		s.Require().NoError(s.store.Update(s.ctx, cert))

		found, err := s.store.FindByID(s.ctx, cert.UniqueID)
		s.Require().NoError(err)
		s.Equal("MSc", found.CertificateTitle)
		s.Equal("Mathematics", found.Department)
	})

	s.Run("returns ErrNotFound for missing record", func() {
		err := s.store.Update(s.ctx, s.newCertificate("CERT-ghost-0000", "ghost"))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *CertificateStoreSuite) TestDelete() {
	s.Run("removes record and reports true", func() {
		cert := s.newCertificate("CERT-22CS123-1234", "22CS123")
		s.Require().NoError(s.store.Create(s.ctx, cert))

		removed, err := s.store.Delete(s.ctx, cert.UniqueID)
		s.Require().NoError(err)
		s.True(removed)

		_, err = s.store.FindByID(s.ctx, cert.UniqueID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("reports false for missing record without error", func() {
		removed, err := s.store.Delete(s.ctx, "CERT-missing-0000")
		s.Require().NoError(err)
		s.False(removed)
	})

	s.Run("keeps list order for the remainder", func() {
		for _, id := range []string{"CERT-X-1000", "CERT-Y-1001", "CERT-Z-1002"} {
			s.Require().NoError(s.store.Create(s.ctx, s.newCertificate(id, id)))
		}
		_, err := s.store.Delete(s.ctx, "CERT-Y-1001")
		s.Require().NoError(err)

		all, err := s.store.ListAll(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(all, 2)
		s.Equal("CERT-X-1000", all[0].UniqueID)
		s.Equal("CERT-Z-1002", all[1].UniqueID)
	})
}
