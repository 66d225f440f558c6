// Package anomaly flags historically anomalous months from forecast
// residuals using standardized scores.
package anomaly

import (
	"context"
	"log/slog"
	"math"
	"time"

	"retailbi/internal/forecast"
)

// DefaultThreshold is the absolute z-score at or above which a month is
// flagged anomalous.
const DefaultThreshold = 3.0

// Record is the anomaly verdict for one historical month. Z is the residual
// expressed in units of the residual population's standard deviation.
type Record struct {
	Month    time.Time `json:"month"`
	Residual float64   `json:"residual"`
	Z        float64   `json:"z"`
	Anomaly  bool      `json:"anomaly"`
}

// Detector standardizes residuals and applies a threshold. It holds no
// state across Detect calls.
type Detector struct {
	threshold float64
	logger    *slog.Logger
}

// NewDetector creates a detector with the given z-score threshold.
// Non-positive thresholds fall back to DefaultThreshold.
func NewDetector(threshold float64, logger *slog.Logger) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{threshold: threshold, logger: logger}
}

// Threshold returns the configured z-score threshold
func (d *Detector) Threshold() float64 {
	return d.threshold
}

// Detect scores every residual against the population mean and standard
// deviation (divisor N). When the residuals have zero variance every score
// is defined as 0, so a flat series never produces spurious flags. The
// output preserves the input's month ordering.
func (d *Detector) Detect(ctx context.Context, residuals []forecast.Residual) []Record {
	records := make([]Record, len(residuals))
	if len(residuals) == 0 {
		return records
	}

	mean, stddev := populationStats(residuals)

	flagged := 0
	for i, r := range residuals {
		z := 0.0
		if stddev > 0 {
			z = (r.Value - mean) / stddev
		}
		isAnomaly := math.Abs(z) >= d.threshold
		if isAnomaly {
			flagged++
		}
		records[i] = Record{
			Month:    r.Month,
			Residual: r.Value,
			Z:        z,
			Anomaly:  isAnomaly,
		}
	}

	d.logger.InfoContext(ctx, "anomaly detection complete",
		slog.Int("months", len(residuals)),
		slog.Int("flagged", flagged),
		slog.Float64("threshold", d.threshold),
		slog.Float64("residual_stddev", stddev))

	return records
}

// populationStats returns the mean and population standard deviation
// (divisor N, not N-1) of the residual values.
func populationStats(residuals []forecast.Residual) (mean, stddev float64) {
	n := float64(len(residuals))
	for _, r := range residuals {
		mean += r.Value
	}
	mean /= n

	variance := 0.0
	for _, r := range residuals {
		d := r.Value - mean
		variance += d * d
	}
	variance /= n

	return mean, math.Sqrt(variance)
}
