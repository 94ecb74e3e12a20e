// Package handler exposes certificate administration over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"securevault/internal/certificate/models"
	dErrors "securevault/pkg/domain-errors"
	"securevault/pkg/platform/httputil"
	"securevault/pkg/requestcontext"
)

// Service defines the certificate operations the handler depends on.
type Service interface {
	Issue(ctx context.Context, req *models.IssueRequest) (*models.Certificate, error)
	Get(ctx context.Context, uniqueID string) (*models.Certificate, error)
	List(ctx context.Context, filter models.Filter) ([]*models.Certificate, error)
	Update(ctx context.Context, uniqueID string, patch *models.Patch) (*models.Certificate, error)
	Remove(ctx context.Context, uniqueID string) (bool, error)
}

// Handler handles certificate endpoints.
type Handler struct {
	logger *slog.Logger
	certs  Service
}

// New creates a certificate Handler.
func New(certs Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, certs: certs}
}

// Register registers the certificate routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/certificates", func(r chi.Router) {
		r.Post("/", h.handleIssue)
		r.Get("/", h.handleList)
		r.Get("/{uniqueID}", h.handleGet)
		r.Put("/{uniqueID}", h.handleUpdate)
		r.Delete("/{uniqueID}", h.handleRemove)
	})
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[IssueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	cert, err := h.certs.Issue(ctx, req.ToModel())
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnavailable) || dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "failed to issue certificate",
				"request_id", requestID,
				"student_id", req.StudentID,
				"error", err.Error(),
			)
		} else {
			h.logger.WarnContext(ctx, "certificate issue rejected",
				"request_id", requestID,
				"student_id", req.StudentID,
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, cert)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := models.Filter{
		StudentID:  r.URL.Query().Get("studentId"),
		Department: r.URL.Query().Get("department"),
	}
	certs, err := h.certs.List(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list certificates",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	// An empty result is a valid listing, not an error.
	if certs == nil {
		certs = []*models.Certificate{}
	}
	httputil.WriteJSON(w, http.StatusOK, certs)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uniqueID := chi.URLParam(r, "uniqueID")

	cert, err := h.certs.Get(ctx, uniqueID)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "failed to fetch certificate",
				"request_id", requestcontext.RequestID(ctx),
				"unique_id", uniqueID,
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, cert)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	uniqueID := chi.URLParam(r, "uniqueID")

	req, ok := httputil.DecodeAndPrepare[UpdateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	cert, err := h.certs.Update(ctx, uniqueID, req.ToPatch())
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnavailable) {
			h.logger.ErrorContext(ctx, "failed to update certificate",
				"request_id", requestID,
				"unique_id", uniqueID,
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, cert)
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uniqueID := chi.URLParam(r, "uniqueID")

	removed, err := h.certs.Remove(ctx, uniqueID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to delete certificate",
			"request_id", requestcontext.RequestID(ctx),
			"unique_id", uniqueID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	if !removed {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "certificate not found"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
