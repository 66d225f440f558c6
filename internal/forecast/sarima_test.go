package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoubleDifference(t *testing.T) {
	t.Run("length shrinks by thirteen", func(t *testing.T) {
		y := make([]float64, 20)
		w := doubleDifference(y)
		assert.Len(t, w, 7)
	})

	t.Run("too short yields nothing", func(t *testing.T) {
		y := make([]float64, diffOffset)
		assert.Empty(t, doubleDifference(y))
	})

	t.Run("linear trend differences to zero", func(t *testing.T) {
		y := make([]float64, 30)
		for i := range y {
			y[i] = 5 + 3*float64(i)
		}
		for _, w := range doubleDifference(y) {
			assert.InDelta(t, 0, w, 1e-12)
		}
	})

	t.Run("annual pattern differences to zero", func(t *testing.T) {
		y := make([]float64, 36)
		for i := range y {
			y[i] = 100 + 10*math.Sin(2*math.Pi*float64(i)/12)
		}
		for _, w := range doubleDifference(y) {
			assert.InDelta(t, 0, w, 1e-9)
		}
	})
}

func TestCSSResiduals(t *testing.T) {
	t.Run("zero coefficients reproduce the input", func(t *testing.T) {
		w := []float64{2, -1, 3, 0.5}
		e, sse := cssResiduals(w, 0, 0, 0)
		assert.Equal(t, w, e)
		assert.InDelta(t, 4+1+9+0.25, sse, 1e-12)
	})

	t.Run("ar coefficient consumes the previous value", func(t *testing.T) {
		w := []float64{1, 0.5, 0.25}
		e, _ := cssResiduals(w, 0.5, 0, 0)
		assert.InDelta(t, 1, e[0], 1e-12)
		assert.InDelta(t, 0, e[1], 1e-12)
		assert.InDelta(t, 0, e[2], 1e-12)
	})
}

func TestPsiWeights(t *testing.T) {
	m := &sarimaModel{phi: 0.5, theta: 0.2, seasonalTheta: 0.3}

	psi := m.psiWeights(3)
	require.Len(t, psi, 3)
	assert.InDelta(t, 1.0, psi[0], 1e-12)
	// psi_1 = theta + (1+phi)
	assert.InDelta(t, 1.7, psi[1], 1e-12)
	// psi_2 = (1+phi)*psi_1 - phi*psi_0
	assert.InDelta(t, 2.05, psi[2], 1e-12)
}

func TestFitSARIMA(t *testing.T) {
	t.Run("insufficient differenced observations", func(t *testing.T) {
		y := make([]float64, diffOffset+minDiffObs-1)
		_, err := fitSARIMA(y)
		assert.ErrorIs(t, err, errNoConvergence)
	})

	t.Run("constant series fits with zero variance", func(t *testing.T) {
		y := make([]float64, 24)
		for i := range y {
			y[i] = 1000
		}

		m, err := fitSARIMA(y)
		require.NoError(t, err)
		assert.InDelta(t, 0, m.sigma2, 1e-12)

		fc := m.forecast(y, 3)
		for _, v := range fc {
			assert.InDelta(t, 1000, v, 1e-6)
		}
		for _, sd := range m.forecastStdDev(3) {
			assert.InDelta(t, 0, sd, 1e-9)
		}
	})

	t.Run("irregular seasonal series fits finite", func(t *testing.T) {
		// Trend and annual cycle plus an off-harmonic component the
		// differencing cannot annihilate, so the optimizer works on a
		// genuinely non-zero objective.
		y := make([]float64, 48)
		for i := range y {
			y[i] = 500 + 5*float64(i) + 80*math.Sin(2*math.Pi*float64(i)/12) + 30*math.Sin(1.7*float64(i))
		}

		m, err := fitSARIMA(y)
		require.NoError(t, err)
		require.False(t, math.IsNaN(m.sigma2))

		fc := m.forecast(y, 6)
		require.Len(t, fc, 6)
		for _, v := range fc {
			assert.False(t, math.IsNaN(v))
			assert.False(t, math.IsInf(v, 0))
		}

		sd := m.forecastStdDev(6)
		for i, s := range sd {
			assert.GreaterOrEqual(t, s, 0.0)
			if i > 0 {
				// forecast uncertainty does not shrink with the horizon
				assert.GreaterOrEqual(t, s, sd[i-1]-1e-9)
			}
		}
	})
}

func TestNelderMead(t *testing.T) {
	t.Run("minimizes a smooth quadratic", func(t *testing.T) {
		fn := func(p []float64) float64 {
			return (p[0]-1)*(p[0]-1) + (p[1]+2)*(p[1]+2) + p[2]*p[2]
		}

		best, ok := nelderMead(fn, []float64{0, 0, 0})
		require.True(t, ok)
		assert.InDelta(t, 1, best[0], 1e-3)
		assert.InDelta(t, -2, best[1], 1e-3)
		assert.InDelta(t, 0, best[2], 1e-3)
	})

	t.Run("rejects an everywhere non-finite objective", func(t *testing.T) {
		fn := func(p []float64) float64 { return math.NaN() }
		_, ok := nelderMead(fn, []float64{0, 0, 0})
		assert.False(t, ok)
	})
}
