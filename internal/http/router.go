// Package httpapi assembles the HTTP surface: shared middleware, operational
// endpoints, and every domain handler's routes.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"securevault/internal/platform/middleware"
	"securevault/pkg/platform/httputil"
)

// Registrar is implemented by each domain handler.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter wires middleware, the operational endpoints, and all registered
// domain routes into a single handler.
func NewRouter(logger *slog.Logger, registrars ...Registrar) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))

	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	for _, reg := range registrars {
		reg.Register(r)
	}

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
