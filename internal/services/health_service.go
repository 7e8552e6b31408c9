package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"
)

// WorkbookCounter reports how many workbooks are loaded
type WorkbookCounter interface {
	Count() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	workbooks WorkbookCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version, buildTime string, workbooks WorkbookCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		workbooks: workbooks,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status with the state of the workbook
// registry
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
		Services: map[string]interface{}{
			"workbooks": hs.checkWorkbooks(),
		},
	}

	hs.logger.DebugContext(ctx, "HealthCheck: completed",
		slog.String("status", status.Status))
	return status
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}

	return result
}

func (hs *HealthService) checkWorkbooks() ServiceHealth {
	if hs.workbooks == nil {
		return ServiceHealth{Status: "not_ready", Message: "workbook service not initialized"}
	}

	health := ServiceHealth{
		Status: "ready",
		Uptime: time.Since(hs.startTime).String(),
	}
	switch n := hs.workbooks.Count(); n {
	case 0:
		health.Message = "no workbook loaded"
	case 1:
		health.Message = "1 workbook loaded"
	default:
		health.Message = fmt.Sprintf("%d workbooks loaded", n)
	}
	return health
}
