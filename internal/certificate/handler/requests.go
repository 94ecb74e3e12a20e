package handler

import (
	"strings"
	"time"

	"securevault/internal/certificate/models"
	dErrors "securevault/pkg/domain-errors"
)

// IssueRequest is the JSON body for POST /api/certificates.
type IssueRequest struct {
	UniqueID         string `json:"uniqueId,omitempty"`
	StudentID        string `json:"studentId"`
	StudentName      string `json:"studentName"`
	Department       string `json:"department"`
	CertificateTitle string `json:"certificateTitle"`
	FileReference    string `json:"fileReference,omitempty"`
}

func (r *IssueRequest) Normalize() {
	r.UniqueID = strings.TrimSpace(r.UniqueID)
	r.StudentID = strings.TrimSpace(r.StudentID)
	r.StudentName = strings.TrimSpace(r.StudentName)
	r.Department = strings.TrimSpace(r.Department)
	r.CertificateTitle = strings.TrimSpace(r.CertificateTitle)
	r.FileReference = strings.TrimSpace(r.FileReference)
}

func (r *IssueRequest) Validate() error {
	if r.StudentID == "" {
		return dErrors.New(dErrors.CodeValidation, "studentId is required")
	}
	if r.CertificateTitle == "" {
		return dErrors.New(dErrors.CodeValidation, "certificateTitle is required")
	}
	return nil
}

// ToModel converts the transport shape to the domain request.
func (r *IssueRequest) ToModel() *models.IssueRequest {
	return &models.IssueRequest{
		UniqueID:         r.UniqueID,
		StudentID:        r.StudentID,
		StudentName:      r.StudentName,
		Department:       r.Department,
		CertificateTitle: r.CertificateTitle,
		FileReference:    r.FileReference,
	}
}

// UpdateRequest is the JSON body for PUT /api/certificates/{uniqueId}.
// Absent fields are left unchanged.
type UpdateRequest struct {
	StudentID        *string    `json:"studentId,omitempty"`
	StudentName      *string    `json:"studentName,omitempty"`
	Department       *string    `json:"department,omitempty"`
	CertificateTitle *string    `json:"certificateTitle,omitempty"`
	IssuedAt         *time.Time `json:"issuedAt,omitempty"`
}

func (r *UpdateRequest) Validate() error {
	if r.StudentID == nil && r.StudentName == nil && r.Department == nil &&
		r.CertificateTitle == nil && r.IssuedAt == nil {
		return dErrors.New(dErrors.CodeValidation, "at least one field must be provided")
	}
	return nil
}

// ToPatch converts the transport shape to the domain patch.
func (r *UpdateRequest) ToPatch() *models.Patch {
	return &models.Patch{
		StudentID:        r.StudentID,
		StudentName:      r.StudentName,
		Department:       r.Department,
		CertificateTitle: r.CertificateTitle,
		IssuedAt:         r.IssuedAt,
	}
}
