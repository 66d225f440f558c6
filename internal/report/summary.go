// Package report renders the executive summary for a pipeline run.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"retailbi/internal/anomaly"
	"retailbi/internal/forecast"
	"retailbi/pkg/contracts/domain"
)

// SummaryFile is the executive summary file name
const SummaryFile = "report.txt"

// trailingMonths is how far back the top-market breakdowns look
const trailingMonths = 3

// Summary is the assembled executive summary content.
type Summary struct {
	TopCountry         string
	TopCountryRevenue  float64
	TopCategory        string
	TopCategoryRevenue float64
	ForecastTotal      float64
	AnomalyCount       int
	ZThreshold         float64
}

// Build computes the summary figures from one run's outputs. The country
// and category leaders are taken over the trailing three months of data.
func Build(monthly []domain.MonthlyRevenue, points []forecast.ForecastPoint, anomalies []anomaly.Record, zThreshold float64) Summary {
	s := Summary{ZThreshold: zThreshold}
	if len(monthly) > 0 {
		latest := monthly[0].Month
		for _, m := range monthly {
			if m.Month.After(latest) {
				latest = m.Month
			}
		}
		cutoff := latest.AddDate(0, -(trailingMonths - 1), 0)

		s.TopCountry, s.TopCountryRevenue = topGroup(monthly, cutoff, func(m domain.MonthlyRevenue) string { return m.Country })
		s.TopCategory, s.TopCategoryRevenue = topGroup(monthly, cutoff, func(m domain.MonthlyRevenue) string { return m.Category })
	}

	for _, p := range points {
		s.ForecastTotal += p.Yhat
	}
	for _, a := range anomalies {
		if a.Anomaly {
			s.AnomalyCount++
		}
	}
	return s
}

// topGroup sums trailing revenue per group key and returns the leader
func topGroup(monthly []domain.MonthlyRevenue, cutoff time.Time, key func(domain.MonthlyRevenue) string) (string, float64) {
	sums := make(map[string]float64)
	for _, m := range monthly {
		if m.Month.Before(cutoff) {
			continue
		}
		sums[key(m)] += m.Revenue
	}

	names := make([]string, 0, len(sums))
	for name := range sums {
		names = append(names, name)
	}
	// Deterministic leader when revenues tie.
	sort.Slice(names, func(i, j int) bool {
		if sums[names[i]] != sums[names[j]] {
			return sums[names[i]] > sums[names[j]]
		}
		return names[i] < names[j]
	})

	if len(names) == 0 {
		return "", 0
	}
	return names[0], sums[names[0]]
}

// Render formats the summary as the plain-text executive report
func (s Summary) Render(horizon int) string {
	var b strings.Builder
	b.WriteString("Retail BI - Executive Summary\n")
	b.WriteString("================================\n")
	if s.TopCountry != "" {
		fmt.Fprintf(&b, "- Top country (last %d months): %s - %.0f\n", trailingMonths, s.TopCountry, s.TopCountryRevenue)
	}
	if s.TopCategory != "" {
		fmt.Fprintf(&b, "- Top category (last %d months): %s - %.0f\n", trailingMonths, s.TopCategory, s.TopCategoryRevenue)
	}
	fmt.Fprintf(&b, "- Next %d months forecast: %.0f (point total), CI in forecast.csv\n", horizon, s.ForecastTotal)
	if s.AnomalyCount > 0 {
		fmt.Fprintf(&b, "- Anomalies detected: %d outliers in history (flagged by z-score >= %.1f)\n", s.AnomalyCount, s.ZThreshold)
	}
	b.WriteString("\n")
	b.WriteString("Implications:\n")
	b.WriteString("- Prioritise top markets and categories; investigate anomaly months for promo or stockout effects.\n")
	b.WriteString("- Use the forecast band to set buy plans and cash buffers; alert if actuals breach the band.\n")
	return b.String()
}

// Write renders the summary and writes it into outDir
func Write(outDir string, summary Summary, horizon int) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(outDir, SummaryFile)
	if err := os.WriteFile(path, []byte(summary.Render(horizon)), 0644); err != nil {
		return fmt.Errorf("write executive summary: %w", err)
	}
	return nil
}
