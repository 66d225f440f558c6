package forecast

// NativeLevel is the confidence level, in percent, of the band the engine
// produces directly.
const NativeLevel = 80

// wideningFactors maps a requested confidence level to the multiplicative
// factor applied to the native band's half-width. The factors are a fixed
// approximation rather than a re-derivation from the model covariance; an
// exact interval would require refitting at the requested significance
// level. Unlisted levels widen by 1.0, leaving the band unchanged.
var wideningFactors = map[int]float64{
	80: 1.00,
	85: 1.15,
	90: 1.35,
	95: 1.80,
}

// SupportedLevels returns the confidence levels with a defined widening
// factor, for input validation at the API surface.
func SupportedLevels() []int {
	return []int{80, 85, 90, 95}
}

// IsSupportedLevel reports whether level has a defined widening factor
func IsSupportedLevel(level int) bool {
	_, ok := wideningFactors[level]
	return ok
}

// Rescale adjusts a forecast's native 80% band to the requested level by
// widening the half-width around each point estimate, then re-clamping the
// bounds to be non-negative. The input is not modified.
func Rescale(points []ForecastPoint, level int) []ForecastPoint {
	factor, ok := wideningFactors[level]
	if !ok {
		factor = 1.0
	}

	out := make([]ForecastPoint, len(points))
	for i, p := range points {
		half := (p.Upper - p.Lower) / 2 * factor
		out[i] = ForecastPoint{
			Month: p.Month,
			Yhat:  p.Yhat,
			Lower: clampRevenue(p.Yhat - half),
			Upper: clampRevenue(p.Yhat + half),
		}
	}
	return out
}
