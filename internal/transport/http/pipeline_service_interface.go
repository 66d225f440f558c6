package http

import (
	"context"

	"retailbi/internal/anomaly"
	"retailbi/internal/forecast"
	"retailbi/internal/services"
)

// PipelineService is the service surface the handlers depend on
type PipelineService interface {
	Run(ctx context.Context, inputPath string, opts services.PipelineOptions) (*services.PipelineResult, error)
	Latest() (*services.PipelineResult, error)
	DetectAnomalies(ctx context.Context, threshold float64) ([]anomaly.Record, error)
	RescaleForecast(level int) ([]forecast.ForecastPoint, error)
}

// HealthService is the health surface the handlers depend on
type HealthService interface {
	Check(ctx context.Context) services.HealthStatus
}
