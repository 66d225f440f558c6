package dataprocessing

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"retailbi/internal/forecast"
	"retailbi/pkg/contracts/domain"
)

// Aggregator buckets cleaned transactions into calendar months.
type Aggregator struct {
	logger *slog.Logger
}

// NewAggregator creates a monthly revenue aggregator
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger}
}

// Aggregate groups revenue by (month, country, category). The result is
// sorted by month ascending, then revenue descending within the month, the
// ordering the exports and the executive summary rely on.
func (a *Aggregator) Aggregate(ctx context.Context, transactions []domain.Transaction) []domain.MonthlyRevenue {
	type bucketKey struct {
		month    time.Time
		country  string
		category string
	}

	buckets := make(map[bucketKey]float64)
	for _, t := range transactions {
		key := bucketKey{
			month:    forecast.MonthStart(t.InvoiceDate),
			country:  t.Country,
			category: t.Category,
		}
		buckets[key] += t.Revenue
	}

	monthly := make([]domain.MonthlyRevenue, 0, len(buckets))
	for key, revenue := range buckets {
		monthly = append(monthly, domain.MonthlyRevenue{
			Month:    key.month,
			Country:  key.country,
			Category: key.category,
			Revenue:  revenue,
		})
	}

	sort.Slice(monthly, func(i, j int) bool {
		if !monthly[i].Month.Equal(monthly[j].Month) {
			return monthly[i].Month.Before(monthly[j].Month)
		}
		if monthly[i].Revenue != monthly[j].Revenue {
			return monthly[i].Revenue > monthly[j].Revenue
		}
		if monthly[i].Country != monthly[j].Country {
			return monthly[i].Country < monthly[j].Country
		}
		return monthly[i].Category < monthly[j].Category
	})

	a.logger.InfoContext(ctx, "aggregated monthly revenue",
		slog.Int("transactions", len(transactions)),
		slog.Int("buckets", len(monthly)))

	return monthly
}

// MonthlyTotals collapses the aggregation into one revenue total per month,
// keyed by the first day of the month. The result feeds
// forecast.BuildMonthlySeries.
func MonthlyTotals(monthly []domain.MonthlyRevenue) map[time.Time]float64 {
	totals := make(map[time.Time]float64)
	for _, m := range monthly {
		totals[m.Month] += m.Revenue
	}
	return totals
}
