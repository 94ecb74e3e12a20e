// Package handler exposes the public verification endpoints. These are the
// routes a scanned QR code lands on, so they are unauthenticated by design.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"securevault/internal/verification/models"
	dErrors "securevault/pkg/domain-errors"
	"securevault/pkg/platform/httputil"
	"securevault/pkg/requestcontext"
)

// Service defines the verification operations the handler depends on.
type Service interface {
	Verify(ctx context.Context, queriedID string) (*models.Result, error)
	History(ctx context.Context, limit int) ([]models.Event, error)
}

// Handler handles verification endpoints.
type Handler struct {
	logger *slog.Logger
	verify Service
}

// New creates a verification Handler.
func New(verify Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, verify: verify}
}

// Register registers the verification routes with the chi router. The query
// form /api/verify?certId= mirrors the path form so older QR links keep
// working.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/verify", func(r chi.Router) {
		r.Get("/", h.handleVerifyQuery)
		r.Get("/history", h.handleHistory)
		r.Get("/{uniqueID}", h.handleVerify)
	})
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, chi.URLParam(r, "uniqueID"))
}

func (h *Handler) handleVerifyQuery(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, r.URL.Query().Get("certId"))
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, queriedID string) {
	ctx := r.Context()

	result, err := h.verify.Verify(ctx, queriedID)
	if err != nil {
		h.logger.ErrorContext(ctx, "verification failed",
			"request_id", requestcontext.RequestID(ctx),
			"queried_id", queriedID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	// An invalid certificate is a successful verification with a negative
	// verdict, not an HTTP error.
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	events, err := h.verify.History(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read verification history",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	if events == nil {
		events = []models.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, events)
}
