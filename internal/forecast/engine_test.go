package forecast

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seriesFrom(start time.Time, values ...float64) Series {
	s := make(Series, len(values))
	m := start
	for i, v := range values {
		s[i] = Point{Month: m, Revenue: v}
		m = m.AddDate(0, 1, 0)
	}
	return s
}

func constantSeries(start time.Time, months int, value float64) Series {
	values := make([]float64, months)
	for i := range values {
		values[i] = value
	}
	return seriesFrom(start, values...)
}

func TestEngineForecastValidation(t *testing.T) {
	engine := NewEngine(testLogger())
	ctx := context.Background()

	t.Run("horizon below one fails", func(t *testing.T) {
		series := constantSeries(month(2024, time.January), 12, 100)
		_, err := engine.Forecast(ctx, series, 0)
		assert.Error(t, err)
	})

	t.Run("empty series fails", func(t *testing.T) {
		_, err := engine.Forecast(ctx, Series{}, 3)
		assert.ErrorIs(t, err, ErrEmptySeries)
	})
}

func TestEnginePersistenceFallback(t *testing.T) {
	engine := NewEngine(testLogger())
	ctx := context.Background()

	t.Run("short history repeats the last value", func(t *testing.T) {
		series := seriesFrom(month(2024, time.January), 100, 110, 95, 105, 100, 300)

		result, err := engine.Forecast(ctx, series, 2)
		require.NoError(t, err)
		assert.Equal(t, MethodPersistence, result.Method)
		assert.Equal(t, NativeLevel, result.Level)
		require.Len(t, result.Points, 2)

		for _, p := range result.Points {
			assert.Equal(t, 300.0, p.Yhat)
			assert.Equal(t, 300.0, p.Lower)
			assert.Equal(t, 300.0, p.Upper)
		}
		assert.Equal(t, month(2024, time.July), result.Points[0].Month)
		assert.Equal(t, month(2024, time.August), result.Points[1].Month)
	})

	t.Run("fallback residuals deviate from the trailing mean", func(t *testing.T) {
		series := seriesFrom(month(2024, time.January), 100, 110, 95, 105, 100, 300)

		result, err := engine.Forecast(ctx, series, 2)
		require.NoError(t, err)
		require.Len(t, result.Residuals, 6)

		// First month: window is just itself.
		assert.InDelta(t, 0, result.Residuals[0].Value, 1e-9)
		// Second month: 110 - mean(100, 110).
		assert.InDelta(t, 5, result.Residuals[1].Value, 1e-9)
		// Third month: 95 - mean(100, 110, 95).
		assert.InDelta(t, 95-305.0/3, result.Residuals[2].Value, 1e-9)
		// Final spike month: 300 - mean(105, 100, 300).
		assert.InDelta(t, 300-505.0/3, result.Residuals[5].Value, 1e-9)
	})

	t.Run("single month history", func(t *testing.T) {
		series := seriesFrom(month(2024, time.June), 42)

		result, err := engine.Forecast(ctx, series, 3)
		require.NoError(t, err)
		require.Len(t, result.Points, 3)
		for _, p := range result.Points {
			assert.Equal(t, 42.0, p.Yhat)
		}
		require.Len(t, result.Residuals, 1)
		assert.InDelta(t, 0, result.Residuals[0].Value, 1e-9)
	})

	t.Run("eight months with infeasible differencing recovers silently", func(t *testing.T) {
		// Long enough for the seasonal path but far too short to double
		// difference: the engine must degrade to persistence, not error.
		series := seriesFrom(month(2024, time.January), 10, 20, 30, 25, 15, 35, 40, 50)

		result, err := engine.Forecast(ctx, series, 3)
		require.NoError(t, err)
		assert.Equal(t, MethodPersistence, result.Method)
		for _, p := range result.Points {
			assert.Equal(t, 50.0, p.Yhat)
		}
	})
}

func TestEngineSeasonalForecast(t *testing.T) {
	engine := NewEngine(testLogger())
	ctx := context.Background()

	t.Run("constant series survives a degenerate fit", func(t *testing.T) {
		series := constantSeries(month(2022, time.January), 24, 1000)

		result, err := engine.Forecast(ctx, series, 3)
		require.NoError(t, err)
		assert.Equal(t, MethodSARIMA, result.Method)
		require.Len(t, result.Points, 3)

		for _, p := range result.Points {
			assert.False(t, math.IsNaN(p.Yhat))
			assert.InDelta(t, 1000, p.Yhat, 1e-6)
			assert.GreaterOrEqual(t, p.Yhat, 0.0)
			assert.LessOrEqual(t, p.Lower, p.Yhat)
			assert.GreaterOrEqual(t, p.Upper, p.Yhat)
		}

		for _, r := range result.Residuals {
			assert.InDelta(t, 0, r.Value, 1e-9)
		}
	})

	t.Run("seasonal series produces ordered bands", func(t *testing.T) {
		values := make([]float64, 48)
		for i := range values {
			values[i] = 2000 + 20*float64(i) + 300*math.Sin(2*math.Pi*float64(i)/12) + 100*math.Sin(1.7*float64(i))
		}
		series := seriesFrom(month(2020, time.January), values...)

		result, err := engine.Forecast(ctx, series, 5)
		require.NoError(t, err)
		require.Len(t, result.Points, 5)

		prev := series.Last().Month
		for _, p := range result.Points {
			assert.Equal(t, prev.AddDate(0, 1, 0), p.Month)
			prev = p.Month

			assert.GreaterOrEqual(t, p.Yhat, 0.0)
			assert.GreaterOrEqual(t, p.Lower, 0.0)
			assert.LessOrEqual(t, p.Lower, p.Yhat)
			assert.LessOrEqual(t, p.Yhat, p.Upper)
		}

		// Residuals only exist once the differencing lags are available.
		assert.Len(t, result.Residuals, 48-13)
		assert.Equal(t, series[13].Month, result.Residuals[0].Month)
	})

	t.Run("near zero series keeps bounds non-negative", func(t *testing.T) {
		values := make([]float64, 30)
		for i := range values {
			values[i] = float64(i%3) * 0.5
		}
		series := seriesFrom(month(2021, time.January), values...)

		result, err := engine.Forecast(ctx, series, 4)
		require.NoError(t, err)
		for _, p := range result.Points {
			assert.GreaterOrEqual(t, p.Lower, 0.0)
			assert.GreaterOrEqual(t, p.Yhat, 0.0)
			assert.GreaterOrEqual(t, p.Upper, 0.0)
		}
	})
}

func TestTrailingMeanResiduals(t *testing.T) {
	series := seriesFrom(month(2024, time.January), 10, 20, 30, 40)
	residuals := trailingMeanResiduals(series)
	require.Len(t, residuals, 4)

	assert.InDelta(t, 0, residuals[0].Value, 1e-9)       // 10 - 10
	assert.InDelta(t, 5, residuals[1].Value, 1e-9)       // 20 - 15
	assert.InDelta(t, 10, residuals[2].Value, 1e-9)      // 30 - 20
	assert.InDelta(t, 10, residuals[3].Value, 1e-9)      // 40 - 30
}
