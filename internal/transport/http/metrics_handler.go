package http

import (
	"net/http"

	"github.com/go-chi/render"

	apierrors "github.com/giuliam-97/Stress-Test/internal/errors"
)

// MetricsHandler serves the Prometheus scrape endpoint
type MetricsHandler struct {
	exporter http.Handler
}

// NewMetricsHandler wraps the Prometheus handler. A nil handler means
// metrics are disabled.
func NewMetricsHandler(exporter http.Handler) *MetricsHandler {
	return &MetricsHandler{exporter: exporter}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		render.Render(w, r, apierrors.NewProblemDetails(
			http.StatusServiceUnavailable,
			apierrors.TypeServiceDown,
			"Metrics Disabled",
			"Metrics collection is disabled in the configuration",
			r.URL.Path,
		))
		return
	}
	h.exporter.ServeHTTP(w, r)
}
