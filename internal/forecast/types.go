package forecast

import (
	"time"
)

// Point is one calendar month's aggregated revenue. Month is the first day
// of the month in UTC.
type Point struct {
	Month   time.Time `json:"month"`
	Revenue float64   `json:"revenue"`
}

// Series is a regular monthly revenue series: one entry per calendar month,
// strictly ascending, no gaps, non-negative revenue. Build one with
// BuildMonthlySeries; treat it as read-only afterwards.
type Series []Point

// Len returns the number of months in the series
func (s Series) Len() int {
	return len(s)
}

// Last returns the final point of the series
func (s Series) Last() Point {
	return s[len(s)-1]
}

// Values returns the revenue values in month order
func (s Series) Values() []float64 {
	values := make([]float64, len(s))
	for i, p := range s {
		values[i] = p.Revenue
	}
	return values
}

// ForecastPoint carries the point estimate and confidence band for one
// future month. Bounds satisfy Lower <= Yhat <= Upper and all three are
// non-negative.
type ForecastPoint struct {
	Month time.Time `json:"month"`
	Yhat  float64   `json:"yhat"`
	Lower float64   `json:"lower"`
	Upper float64   `json:"upper"`
}

// Residual is the one-step-ahead in-sample error for one historical month.
// The residual series may be shorter than the input series: the seasonal
// model only produces residuals once its differencing lags are available.
type Residual struct {
	Month time.Time `json:"month"`
	Value float64   `json:"value"`
}

// Method identifies which estimator produced a forecast
type Method string

const (
	// MethodSARIMA is the seasonal ARIMA model path
	MethodSARIMA Method = "sarima"
	// MethodPersistence repeats the last observed value
	MethodPersistence Method = "persistence"
)

// Result is the complete output of one Engine invocation over one Series.
type Result struct {
	Points    []ForecastPoint `json:"points"`
	Residuals []Residual      `json:"residuals"`
	Method    Method          `json:"method"`
	Level     int             `json:"level"` // confidence level of the band, percent
}
