// Package forecast implements the monthly revenue forecasting core.
//
// The package turns a monthly revenue aggregation into a regular,
// gap-filled series and produces a short-horizon point forecast with a
// confidence band, plus the in-sample residuals that feed anomaly
// detection downstream.
//
// # Core Components
//
//   - series.go: Series construction (sorting, gap filling, validation)
//   - sarima.go: Seasonal ARIMA(1,1,1)(0,1,1)[12] estimation and prediction
//   - engine.go: Forecast orchestration and the persistence fallback policy
//   - rescale.go: Approximate confidence-band rescaling to other levels
//
// # Forecast Policy
//
// Series with at least eight observed months are fitted with a seasonal
// ARIMA model by conditional maximum likelihood. Shorter series, and any
// series for which the fit fails to converge, fall back to a persistence
// forecast: the last observed value is repeated for every future month
// with a zero-width band. The engine never propagates a numerical fitting
// failure to the caller; availability of a (possibly naive) forecast is
// preferred over hard failure.
//
// # Usage Example
//
//	series, err := forecast.BuildMonthlySeries(totals)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	engine := forecast.NewEngine(logger)
//	result, err := engine.Forecast(ctx, series, 3)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Widen the native 80% band to a 95% band.
//	points := forecast.Rescale(result.Points, 95)
package forecast
