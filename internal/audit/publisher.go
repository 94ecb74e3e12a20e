package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"securevault/pkg/requestcontext"
)

// Publisher hands events to the background worker without blocking the
// request path. When the buffer is full the event is dropped with a warning;
// the trail is operational, not compliance-grade.
type Publisher struct {
	inbox  chan<- Event
	logger *slog.Logger
}

// NewPublisher creates a publisher feeding the given inbox.
func NewPublisher(inbox chan<- Event, logger *slog.Logger) *Publisher {
	return &Publisher{inbox: inbox, logger: logger}
}

// Emit enqueues an event, filling in ID, timestamp, and request ID.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	select {
	case p.inbox <- event:
	default:
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit inbox full, dropping event",
				"action", event.Action,
				"subject", event.Subject,
			)
		}
	}
}
