package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	pipeline  *PipelineService
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Pipeline  map[string]interface{} `json:"pipeline,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version, buildTime string, pipeline *PipelineService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		buildTime: buildTime,
		pipeline:  pipeline,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// Check returns the current health status
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   s.version,
		Runtime: map[string]interface{}{
			"go_version":     runtime.Version(),
			"os":             runtime.GOOS,
			"arch":           runtime.GOARCH,
			"goroutines":     runtime.NumGoroutine(),
			"uptime_seconds": time.Since(s.startTime).Seconds(),
		},
	}

	if s.buildTime != "" {
		status.Runtime["build_time"] = s.buildTime
	}

	pipeline := map[string]interface{}{"has_result": false}
	if s.pipeline != nil {
		if last, err := s.pipeline.Latest(); err == nil {
			pipeline["has_result"] = true
			pipeline["last_run_id"] = last.RunID
			pipeline["last_run_at"] = last.StartedAt
			pipeline["months"] = last.Series.Len()
		}
	}
	status.Pipeline = pipeline

	return status
}
