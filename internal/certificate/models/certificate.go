package models

import (
	"strings"
	"time"

	dErrors "securevault/pkg/domain-errors"
)

// Certificate is the authoritative record for one issued academic credential.
// UniqueID is the opaque public identifier used in verification URLs and QR
// codes; it never changes after issuance. IssuedAt is immutable after
// creation; the remaining display fields may be corrected by an admin update.
type Certificate struct {
	UniqueID         string    `json:"uniqueId"`
	StudentID        string    `json:"studentId"`
	StudentName      string    `json:"studentName"`
	Department       string    `json:"department"`
	CertificateTitle string    `json:"certificateTitle"`
	FileReference    string    `json:"fileReference,omitempty"`
	IssuedAt         time.Time `json:"issuedAt"`
	VerificationURL  string    `json:"verificationUrl"`
}

// NewCertificate validates invariants and builds a record. The caller supplies
// the uniqueID (from the generator or an explicit admin choice); uniqueness is
// enforced by the store, not here.
func NewCertificate(uniqueID, studentID, studentName, department, title, fileReference, verificationURL string, issuedAt time.Time) (*Certificate, error) {
	if strings.TrimSpace(uniqueID) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "uniqueId cannot be empty")
	}
	if strings.TrimSpace(studentID) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "studentId cannot be empty")
	}
	if strings.TrimSpace(title) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "certificateTitle cannot be empty")
	}
	if issuedAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "issuedAt cannot be zero")
	}
	return &Certificate{
		UniqueID:         uniqueID,
		StudentID:        studentID,
		StudentName:      studentName,
		Department:       department,
		CertificateTitle: title,
		FileReference:    fileReference,
		IssuedAt:         issuedAt,
		VerificationURL:  verificationURL,
	}, nil
}

// IssueRequest carries the fields an administrator supplies when issuing.
// UniqueID is optional; the service generates one when empty.
type IssueRequest struct {
	UniqueID         string
	StudentID        string
	StudentName      string
	Department       string
	CertificateTitle string
	FileReference    string
}

// Normalize trims whitespace on all identifier and display fields.
func (r *IssueRequest) Normalize() {
	r.UniqueID = strings.TrimSpace(r.UniqueID)
	r.StudentID = strings.TrimSpace(r.StudentID)
	r.StudentName = strings.TrimSpace(r.StudentName)
	r.Department = strings.TrimSpace(r.Department)
	r.CertificateTitle = strings.TrimSpace(r.CertificateTitle)
	r.FileReference = strings.TrimSpace(r.FileReference)
}

// Validate rejects requests before any store mutation.
func (r *IssueRequest) Validate() error {
	if r.StudentID == "" {
		return dErrors.New(dErrors.CodeValidation, "studentId is required")
	}
	if r.CertificateTitle == "" {
		return dErrors.New(dErrors.CodeValidation, "certificateTitle is required")
	}
	return nil
}

// Patch updates mutable display fields. Nil fields are left untouched.
// UniqueID is not patchable.
type Patch struct {
	StudentID        *string
	StudentName      *string
	Department       *string
	CertificateTitle *string
	IssuedAt         *time.Time
}

// Validate rejects patches that would blank out required fields.
func (p *Patch) Validate() error {
	if p.StudentID != nil && strings.TrimSpace(*p.StudentID) == "" {
		return dErrors.New(dErrors.CodeValidation, "studentId cannot be blank")
	}
	if p.CertificateTitle != nil && strings.TrimSpace(*p.CertificateTitle) == "" {
		return dErrors.New(dErrors.CodeValidation, "certificateTitle cannot be blank")
	}
	if p.IssuedAt != nil && p.IssuedAt.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "issuedAt cannot be zero")
	}
	return nil
}

// Apply copies the patched fields onto the certificate.
func (p *Patch) Apply(c *Certificate) {
	if p.StudentID != nil {
		c.StudentID = strings.TrimSpace(*p.StudentID)
	}
	if p.StudentName != nil {
		c.StudentName = strings.TrimSpace(*p.StudentName)
	}
	if p.Department != nil {
		c.Department = strings.TrimSpace(*p.Department)
	}
	if p.CertificateTitle != nil {
		c.CertificateTitle = strings.TrimSpace(*p.CertificateTitle)
	}
	if p.IssuedAt != nil {
		c.IssuedAt = *p.IssuedAt
	}
}

// Filter narrows list queries. Zero-value fields match everything.
type Filter struct {
	StudentID  string
	Department string
}

// Matches reports whether the certificate satisfies the filter.
func (f Filter) Matches(c *Certificate) bool {
	if f.StudentID != "" && c.StudentID != f.StudentID {
		return false
	}
	if f.Department != "" && c.Department != f.Department {
		return false
	}
	return true
}
