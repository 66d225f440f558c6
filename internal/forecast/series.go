package forecast

import (
	"errors"
	"math"
	"sort"
	"time"
)

// ErrEmptySeries is returned when a series is requested from an aggregation
// that contains no usable months. This is the only condition the pipeline
// surfaces to the caller instead of degrading gracefully.
var ErrEmptySeries = errors.New("revenue series is empty")

// BuildMonthlySeries converts a month->revenue aggregation, possibly
// unsorted and with gaps, into a regular Series covering every calendar
// month between the earliest and latest observed month inclusive. Missing
// months are filled with zero revenue. NaN and infinite values are dropped
// before building; if nothing remains, ErrEmptySeries is returned.
func BuildMonthlySeries(totals map[time.Time]float64) (Series, error) {
	clean := make(map[time.Time]float64, len(totals))
	for month, revenue := range totals {
		if math.IsNaN(revenue) || math.IsInf(revenue, 0) {
			continue
		}
		clean[MonthStart(month)] += revenue
	}
	if len(clean) == 0 {
		return nil, ErrEmptySeries
	}

	months := make([]time.Time, 0, len(clean))
	for month := range clean {
		months = append(months, month)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	first, last := months[0], months[len(months)-1]
	series := make(Series, 0, monthsBetween(first, last)+1)
	for month := first; !month.After(last); month = month.AddDate(0, 1, 0) {
		revenue := clean[month]
		if revenue < 0 {
			revenue = 0
		}
		series = append(series, Point{Month: month, Revenue: revenue})
	}
	return series, nil
}

// MonthStart truncates a timestamp to the first day of its calendar month
// in UTC.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// monthsBetween counts whole calendar months from a to b. Both must be
// month starts with a <= b.
func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}
