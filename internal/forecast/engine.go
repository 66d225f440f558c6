package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"math"
)

// minHistory is the number of observed months below which the engine does
// not attempt a seasonal fit: there is not enough data to estimate annual
// structure, so the persistence policy applies instead.
const minHistory = 8

// trailingWindow is the averaging window for fallback residuals.
const trailingWindow = 3

// Engine produces revenue forecasts with confidence bands. It is stateless
// between invocations: each Forecast call owns its series, residuals and
// result exclusively.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a forecast engine
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Forecast predicts revenue for the next horizon months. Series with at
// least minHistory months are fitted with the seasonal model; shorter
// series, and series whose fit does not converge, take the persistence
// path. The band of the returned result is at the native 80% level; use
// Rescale for other levels.
func (e *Engine) Forecast(ctx context.Context, series Series, horizon int) (*Result, error) {
	if horizon < 1 {
		return nil, fmt.Errorf("horizon must be at least 1, got %d", horizon)
	}
	if len(series) == 0 {
		return nil, ErrEmptySeries
	}

	if len(series) < minHistory {
		e.logger.InfoContext(ctx, "history too short for seasonal model, using persistence forecast",
			slog.Int("months", len(series)),
			slog.Int("min_history", minHistory))
		return e.persistence(series, horizon), nil
	}

	model, err := fitSARIMA(series.Values())
	if err != nil {
		e.logger.WarnContext(ctx, "seasonal fit failed, falling back to persistence forecast",
			slog.Int("months", len(series)),
			slog.String("error", err.Error()))
		return e.persistence(series, horizon), nil
	}

	yhat := model.forecast(series.Values(), horizon)
	sd := model.forecastStdDev(horizon)
	if !allFinite(yhat) || !allFinite(sd) {
		e.logger.WarnContext(ctx, "seasonal forecast produced non-finite values, falling back to persistence forecast",
			slog.Int("months", len(series)))
		return e.persistence(series, horizon), nil
	}

	points := make([]ForecastPoint, horizon)
	month := series.Last().Month
	for h := 0; h < horizon; h++ {
		month = month.AddDate(0, 1, 0)
		points[h] = ForecastPoint{
			Month: month,
			Yhat:  clampRevenue(yhat[h]),
			Lower: clampRevenue(yhat[h] - z80*sd[h]),
			Upper: clampRevenue(yhat[h] + z80*sd[h]),
		}
	}

	residuals := make([]Residual, len(model.resid))
	for i, r := range model.resid {
		residuals[i] = Residual{Month: series[diffOffset+i].Month, Value: r}
	}

	e.logger.InfoContext(ctx, "seasonal forecast complete",
		slog.Int("months", len(series)),
		slog.Int("horizon", horizon),
		slog.Float64("phi", model.phi),
		slog.Float64("theta", model.theta),
		slog.Float64("seasonal_theta", model.seasonalTheta))

	return &Result{
		Points:    points,
		Residuals: residuals,
		Method:    MethodSARIMA,
		Level:     NativeLevel,
	}, nil
}

// persistence repeats the last observed value for every forecast month with
// a zero-width band: with no usable model there is no basis for estimating
// uncertainty. Residuals become the deviation from a trailing three-month
// mean so anomaly detection still has a signal to work with.
func (e *Engine) persistence(series Series, horizon int) *Result {
	last := series.Last()
	points := make([]ForecastPoint, horizon)
	month := last.Month
	base := clampRevenue(last.Revenue)
	for h := 0; h < horizon; h++ {
		month = month.AddDate(0, 1, 0)
		points[h] = ForecastPoint{Month: month, Yhat: base, Lower: base, Upper: base}
	}

	return &Result{
		Points:    points,
		Residuals: trailingMeanResiduals(series),
		Method:    MethodPersistence,
		Level:     NativeLevel,
	}
}

// trailingMeanResiduals returns actual minus the trailing mean over the
// current and up to two preceding months. The window shortens at the start
// of the series, so every month gets a residual.
func trailingMeanResiduals(series Series) []Residual {
	residuals := make([]Residual, len(series))
	for i, p := range series {
		start := i - trailingWindow + 1
		if start < 0 {
			start = 0
		}
		sum := 0.0
		for j := start; j <= i; j++ {
			sum += series[j].Revenue
		}
		mean := sum / float64(i-start+1)
		residuals[i] = Residual{Month: p.Month, Value: p.Revenue - mean}
	}
	return residuals
}

func clampRevenue(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func allFinite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
