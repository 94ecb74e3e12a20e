package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action names an administrative operation worth keeping a trail of.
// Verification lookups have their own dedicated log (internal/verification);
// this trail covers mutations performed by administrators.
type Action string

const (
	ActionCertificateIssued  Action = "certificate_issued"
	ActionCertificateUpdated Action = "certificate_updated"
	ActionCertificateDeleted Action = "certificate_deleted"
)

// Event is emitted from domain logic to capture administrative actions.
// Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID
	Action    Action
	Subject   string // certificate uniqueId
	StudentID string
	RequestID string
	Timestamp time.Time
}
