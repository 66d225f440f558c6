package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailbi/internal/anomaly"
	"retailbi/internal/forecast"
	"retailbi/pkg/contracts/domain"
)

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestBuild(t *testing.T) {
	monthly := []domain.MonthlyRevenue{
		// Old month, outside the trailing window.
		{Month: month(2023, time.June), Country: "Germany", Category: "Misc", Revenue: 10000},
		// Trailing three months: February through April 2024.
		{Month: month(2024, time.February), Country: "United Kingdom", Category: "Gift Box", Revenue: 500},
		{Month: month(2024, time.March), Country: "United Kingdom", Category: "Candles", Revenue: 300},
		{Month: month(2024, time.March), Country: "France", Category: "Gift Box", Revenue: 600},
		{Month: month(2024, time.April), Country: "France", Category: "Candles", Revenue: 100},
	}
	points := []forecast.ForecastPoint{
		{Month: month(2024, time.May), Yhat: 400},
		{Month: month(2024, time.June), Yhat: 350},
	}
	anomalies := []anomaly.Record{
		{Month: month(2024, time.February), Z: 0.2, Anomaly: false},
		{Month: month(2024, time.March), Z: 3.5, Anomaly: true},
	}

	s := Build(monthly, points, anomalies, 3.0)

	// UK: 500+300=800, France: 600+100=700, Germany excluded as stale.
	assert.Equal(t, "United Kingdom", s.TopCountry)
	assert.Equal(t, 800.0, s.TopCountryRevenue)
	// Gift Box: 500+600=1100, Candles: 300+100=400.
	assert.Equal(t, "Gift Box", s.TopCategory)
	assert.Equal(t, 1100.0, s.TopCategoryRevenue)
	assert.Equal(t, 750.0, s.ForecastTotal)
	assert.Equal(t, 1, s.AnomalyCount)
}

func TestBuildEmptyInputs(t *testing.T) {
	s := Build(nil, nil, nil, 3.0)
	assert.Empty(t, s.TopCountry)
	assert.Empty(t, s.TopCategory)
	assert.Zero(t, s.ForecastTotal)
	assert.Zero(t, s.AnomalyCount)
}

func TestRender(t *testing.T) {
	s := Summary{
		TopCountry:         "United Kingdom",
		TopCountryRevenue:  800,
		TopCategory:        "Gift Box",
		TopCategoryRevenue: 1100,
		ForecastTotal:      750,
		AnomalyCount:       2,
		ZThreshold:         3.0,
	}

	text := s.Render(3)
	assert.Contains(t, text, "Executive Summary")
	assert.Contains(t, text, "Top country (last 3 months): United Kingdom - 800")
	assert.Contains(t, text, "Top category (last 3 months): Gift Box - 1100")
	assert.Contains(t, text, "Next 3 months forecast: 750")
	assert.Contains(t, text, "Anomalies detected: 2")
	assert.Contains(t, text, "Implications:")
}

func TestRenderWithoutAnomalies(t *testing.T) {
	text := Summary{ForecastTotal: 10}.Render(3)
	assert.NotContains(t, text, "Anomalies detected")
}

func TestWrite(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "reports")

	err := Write(outDir, Summary{ForecastTotal: 5, TopCountry: "France", TopCountryRevenue: 5}, 3)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, SummaryFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "France")
}
