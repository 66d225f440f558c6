package exporter

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"retailbi/internal/anomaly"
	"retailbi/internal/forecast"
	"retailbi/pkg/contracts/domain"
)

// File names of the exported artifacts. The names, like the table columns,
// are a contract with downstream BI consumers.
const (
	FactSalesFile   = "fact_sales.csv"
	DimDateFile     = "dim_date.csv"
	TotalSeriesFile = "total_timeseries.csv"
	ForecastFile    = "forecast.csv"
	AnomaliesFile   = "anomalies.csv"
	WorkbookFile    = "retail_bi.xlsx"
)

// Artifacts bundles everything one pipeline run produces for export.
type Artifacts struct {
	Monthly   []domain.MonthlyRevenue
	Totals    forecast.Series
	Forecast  []forecast.ForecastPoint
	Anomalies []anomaly.Record
}

// ExportAll writes the five CSV tables and the BI workbook into outDir.
// The CSV files are independent and written concurrently; the workbook is
// written last so a failed sheet cannot leave partial CSV output ambiguous.
func ExportAll(ctx context.Context, outDir string, artifacts Artifacts, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	csvWriter := NewCSVWriter(outDir, logger)

	tables := map[string]Table{
		FactSalesFile:   FactSalesTable(artifacts.Monthly),
		DimDateFile:     DimDateTable(artifacts.Totals),
		TotalSeriesFile: TotalSeriesTable(artifacts.Totals),
		ForecastFile:    ForecastTable(artifacts.Forecast),
		AnomaliesFile:   AnomalyTable(artifacts.Anomalies),
	}

	g, ctx := errgroup.WithContext(ctx)
	for name, table := range tables {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := csvWriter.WriteTable(name, table); err != nil {
				return fmt.Errorf("export %s: %w", name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	workbookWriter := NewWorkbookWriter(outDir, logger)
	sheets := []Sheet{
		{Name: "FactSales", Table: tables[FactSalesFile]},
		{Name: "DimDate", Table: tables[DimDateFile]},
		{Name: "TotalTimeseries", Table: tables[TotalSeriesFile]},
		{Name: "Forecast", Table: tables[ForecastFile]},
		{Name: "Anomalies", Table: tables[AnomaliesFile]},
	}
	if err := workbookWriter.WriteWorkbook(WorkbookFile, sheets); err != nil {
		return fmt.Errorf("export workbook: %w", err)
	}

	logger.InfoContext(ctx, "exported BI artifacts",
		slog.String("out_dir", outDir),
		slog.Int("csv_files", len(tables)))
	return nil
}
