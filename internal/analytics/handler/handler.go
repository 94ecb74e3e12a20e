// Package handler exposes the analytics dashboard endpoint.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"securevault/internal/analytics"
	dErrors "securevault/pkg/domain-errors"
	"securevault/pkg/platform/httputil"
	"securevault/pkg/requestcontext"
)

// defaultRecentLimit caps the recent-activity feed when the caller does not
// ask for a specific size.
const defaultRecentLimit = 5

// Service defines the analytics operations the handler depends on.
type Service interface {
	BuildReport(ctx context.Context, bucket analytics.Bucket, recentLimit int) (*analytics.Report, error)
}

// Handler handles analytics endpoints.
type Handler struct {
	logger    *slog.Logger
	analytics Service
}

// New creates an analytics Handler.
func New(analytics Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, analytics: analytics}
}

// Register registers the analytics routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/analytics", h.handleReport)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bucket := analytics.BucketDay
	switch raw := r.URL.Query().Get("bucket"); raw {
	case "", string(analytics.BucketDay):
	case string(analytics.BucketMonth):
		bucket = analytics.BucketMonth
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "bucket must be day or month"))
		return
	}

	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	report, err := h.analytics.BuildReport(ctx, bucket, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build analytics report",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, report)
}
