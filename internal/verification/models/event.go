package models

import (
	"time"

	"github.com/google/uuid"

	certmodels "securevault/internal/certificate/models"
)

// Snapshot is a frozen copy of a certificate's display fields captured at
// verification time. Later edits or deletion of the certificate must not
// change what a historical log entry shows.
type Snapshot struct {
	CertificateTitle string `json:"certificateTitle"`
	StudentName      string `json:"studentName"`
	StudentID        string `json:"studentId"`
	Department       string `json:"department"`
}

// SnapshotOf captures the display fields of a certificate.
func SnapshotOf(cert *certmodels.Certificate) *Snapshot {
	if cert == nil {
		return nil
	}
	return &Snapshot{
		CertificateTitle: cert.CertificateTitle,
		StudentName:      cert.StudentName,
		StudentID:        cert.StudentID,
		Department:       cert.Department,
	}
}

// Event is one immutable log entry recording an attempt to validate a
// certificate ID. QueriedID is whatever the caller presented, matching or
// not; Certificate is nil for invalid lookups.
type Event struct {
	ID          uuid.UUID `json:"id"`
	QueriedID   string    `json:"queriedId"`
	Valid       bool      `json:"valid"`
	VerifiedAt  time.Time `json:"verifiedAt"`
	Certificate *Snapshot `json:"certificate,omitempty"`
}

// Result is what a verification caller gets back. Certificate is the live
// record at lookup time (nil when invalid); the log keeps its own snapshot.
type Result struct {
	Valid       bool                      `json:"valid"`
	Certificate *certmodels.Certificate `json:"certificate"`
}
