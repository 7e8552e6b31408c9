package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/giuliam-97/Stress-Test/internal/services"
	"github.com/giuliam-97/Stress-Test/pkg/contracts"
)

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	service *services.HealthService
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service *services.HealthService, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "health")),
	}
}

// HealthCheck handles GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.HealthCheck(r.Context()))
}

// Version handles GET /api/version
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	info := h.service.Version()
	build := contracts.GetVersionInfo()
	info["git_commit"] = build.GitCommit
	info["api_version"] = build.APIVersion
	render.JSON(w, r, info)
}
