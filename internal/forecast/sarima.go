package forecast

import (
	"errors"
	"math"
)

// Seasonal ARIMA(1,1,1)(0,1,1)[12] estimation.
//
// After applying the non-seasonal and seasonal differences
//
//	w_t = (1-B)(1-B^12) y_t
//
// the model for the differenced series is
//
//	w_t = phi*w_{t-1} + e_t + theta*e_{t-1} + Theta*e_{t-12} + theta*Theta*e_{t-13}
//
// Pre-sample values of w and e are taken as zero, so minimizing the
// conditional sum of squares of e is equivalent to maximizing the Gaussian
// conditional likelihood. No stationarity or invertibility constraints are
// placed on the coefficients: small retail series often sit outside the
// textbook parameter region and constraining the optimizer makes the fit
// brittle for exactly those inputs.

const (
	seasonalPeriod = 12
	// diffOffset is the number of leading months consumed by d=1
	// non-seasonal plus D=1 seasonal differencing.
	diffOffset = seasonalPeriod + 1
	// minDiffObs is the minimum number of differenced observations needed
	// to attempt estimation at all.
	minDiffObs = 3
	// z80 is the standard normal quantile for a two-sided 80% interval.
	z80 = 1.2815515655446004
)

// errNoConvergence signals that estimation could not produce a usable model.
// It never leaves the package: the engine recovers with the persistence
// policy.
var errNoConvergence = errors.New("sarima estimation did not converge")

// sarimaModel holds the fitted coefficients and in-sample state of one
// estimation run.
type sarimaModel struct {
	phi           float64 // non-seasonal AR(1)
	theta         float64 // non-seasonal MA(1)
	seasonalTheta float64 // seasonal MA(1) at lag 12
	sigma2        float64 // innovation variance estimate
	resid         []float64
}

// fitSARIMA estimates the model on a monthly revenue history. The residual
// slice lines up with the differenced observations, i.e. with the input
// months starting at index diffOffset.
func fitSARIMA(values []float64) (*sarimaModel, error) {
	w := doubleDifference(values)
	if len(w) < minDiffObs {
		return nil, errNoConvergence
	}

	objective := func(p []float64) float64 {
		_, sse := cssResiduals(w, p[0], p[1], p[2])
		return sse
	}

	params, ok := nelderMead(objective, []float64{0.1, 0.1, 0.1})
	if !ok {
		return nil, errNoConvergence
	}

	resid, sse := cssResiduals(w, params[0], params[1], params[2])
	if math.IsNaN(sse) || math.IsInf(sse, 0) {
		return nil, errNoConvergence
	}

	return &sarimaModel{
		phi:           params[0],
		theta:         params[1],
		seasonalTheta: params[2],
		sigma2:        sse / float64(len(w)),
		resid:         resid,
	}, nil
}

// doubleDifference applies first-order non-seasonal and first-order
// seasonal (period 12) differencing. The result has len(y)-13 entries, or
// none when the history is too short to difference.
func doubleDifference(y []float64) []float64 {
	if len(y) <= diffOffset {
		return nil
	}
	w := make([]float64, 0, len(y)-diffOffset)
	for t := diffOffset; t < len(y); t++ {
		w = append(w, y[t]-y[t-1]-y[t-seasonalPeriod]+y[t-diffOffset])
	}
	return w
}

// cssResiduals runs the innovation recursion for the given coefficients and
// returns the one-step-ahead residuals with their sum of squares.
func cssResiduals(w []float64, phi, theta, seasonalTheta float64) ([]float64, float64) {
	e := make([]float64, len(w))
	sse := 0.0
	for t := range w {
		pred := 0.0
		if t >= 1 {
			pred += phi*w[t-1] + theta*e[t-1]
		}
		if t >= seasonalPeriod {
			pred += seasonalTheta * e[t-seasonalPeriod]
		}
		if t >= diffOffset {
			pred += theta * seasonalTheta * e[t-diffOffset]
		}
		e[t] = w[t] - pred
		sse += e[t] * e[t]
	}
	return e, sse
}

// forecast produces point predictions for the next horizon months using the
// ARIMA difference equation on the original scale:
//
//	y_t = (1+phi)y_{t-1} - phi*y_{t-2} + y_{t-12} - (1+phi)y_{t-13} + phi*y_{t-14}
//	      + e_t + theta*e_{t-1} + Theta*e_{t-12} + theta*Theta*e_{t-13}
//
// with future shocks set to zero.
func (m *sarimaModel) forecast(y []float64, horizon int) []float64 {
	n := len(y)

	eps := make([]float64, n+horizon)
	for i, e := range m.resid {
		eps[diffOffset+i] = e
	}

	ext := make([]float64, n+horizon)
	copy(ext, y)
	for t := n; t < n+horizon; t++ {
		v := (1+m.phi)*ext[t-1] - m.phi*ext[t-2] +
			ext[t-seasonalPeriod] - (1+m.phi)*ext[t-diffOffset] + m.phi*ext[t-diffOffset-1]
		v += m.theta*eps[t-1] + m.seasonalTheta*eps[t-seasonalPeriod] +
			m.theta*m.seasonalTheta*eps[t-diffOffset]
		ext[t] = v
	}
	return ext[n:]
}

// forecastStdDev returns the standard deviation of the h-step forecast
// errors for h = 1..horizon, derived from the psi weights of the full
// integrated model.
func (m *sarimaModel) forecastStdDev(horizon int) []float64 {
	psi := m.psiWeights(horizon)
	sd := make([]float64, horizon)
	sum := 0.0
	for h := 0; h < horizon; h++ {
		sum += psi[h] * psi[h]
		sd[h] = math.Sqrt(m.sigma2 * sum)
	}
	return sd
}

// psiWeights expands the model into its moving-average representation.
// Writing the full AR side phi(B)(1-B)(1-B^12) as 1 - sum a_i B^i, the
// weights follow the recursion psi_j = c_j + sum a_i psi_{j-i} where c are
// the MA coefficients of (1+theta*B)(1+Theta*B^12).
func (m *sarimaModel) psiWeights(count int) []float64 {
	a := map[int]float64{
		1:              1 + m.phi,
		2:              -m.phi,
		seasonalPeriod: 1,
		diffOffset:     -(1 + m.phi),
		diffOffset + 1: m.phi,
	}
	c := map[int]float64{
		1:              m.theta,
		seasonalPeriod: m.seasonalTheta,
		diffOffset:     m.theta * m.seasonalTheta,
	}

	psi := make([]float64, count)
	if count == 0 {
		return psi
	}
	psi[0] = 1
	for j := 1; j < count; j++ {
		v := c[j]
		for lag, coef := range a {
			if j-lag >= 0 {
				v += coef * psi[j-lag]
			}
		}
		psi[j] = v
	}
	return psi
}
