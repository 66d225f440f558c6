package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"retailbi/internal/anomaly"
	"retailbi/internal/config"
	"retailbi/internal/exporter"
	"retailbi/internal/forecast"
	"retailbi/internal/infrastructure"
	"retailbi/internal/report"
	"retailbi/internal/services"
)

func main() {
	inputPath := flag.String("in", "", "input transactions file, CSV or XLSX (defaults to configured path)")
	outputDir := flag.String("out", "", "output directory for BI artifacts (defaults to configured path)")
	horizon := flag.Int("horizon", 0, "forecast horizon in months (defaults to configured value)")
	level := flag.Int("level", 0, "confidence level for the forecast band: 80, 85, 90 or 95")
	zThreshold := flag.Float64("z-threshold", 0, "z-score threshold for anomaly flagging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}

	if *inputPath == "" {
		*inputPath = cfg.Paths.InputFile
	}
	if *outputDir == "" {
		*outputDir = cfg.GetOutputDir()
	}
	if *horizon == 0 {
		*horizon = cfg.Forecast.Horizon
	}
	if *level == 0 {
		*level = cfg.Forecast.ConfidenceLevel
	}
	if *zThreshold == 0 {
		*zThreshold = cfg.Anomaly.ZThreshold
	}

	if !forecast.IsSupportedLevel(*level) {
		logger.Error("Unsupported confidence level",
			"level", *level,
			"supported", fmt.Sprint(forecast.SupportedLevels()))
		os.Exit(1)
	}

	if _, err := os.Stat(*inputPath); os.IsNotExist(err) {
		logger.Error("Input file not found",
			"path", *inputPath,
			"hint", "Provide -in or set RETAILBI_PATHS_INPUT_FILE")
		os.Exit(1)
	}

	ctx := context.Background()

	pipeline := services.NewPipelineService(*horizon, *zThreshold, logger)

	logger.Info("Running pipeline",
		"input", *inputPath,
		"horizon", *horizon,
		"level", *level,
		"z_threshold", *zThreshold)

	result, err := pipeline.Run(ctx, *inputPath, services.PipelineOptions{})
	if err != nil {
		logger.Error("Pipeline run failed", "error", err)
		os.Exit(1)
	}

	points := result.Forecast.Points
	if *level != result.Forecast.Level {
		points = forecast.Rescale(points, *level)
	}

	logger.Info("Pipeline completed",
		"run_id", result.RunID,
		"transactions", result.TransactionCount,
		"months", result.Series.Len(),
		"method", string(result.Forecast.Method),
		"anomalies", countAnomalies(result.Anomalies))

	artifacts := exporter.Artifacts{
		Monthly:   result.Monthly,
		Totals:    result.Series,
		Forecast:  points,
		Anomalies: result.Anomalies,
	}
	if err := exporter.ExportAll(ctx, *outputDir, artifacts, logger); err != nil {
		logger.Error("Failed to export artifacts", "error", err)
		os.Exit(1)
	}

	summary := report.Build(result.Monthly, points, result.Anomalies, *zThreshold)
	if err := report.Write(cfg.GetReportsDir(), summary, *horizon); err != nil {
		logger.Error("Failed to write summary report", "error", err)
		os.Exit(1)
	}

	logger.Info("Artifacts written",
		"output_dir", *outputDir,
		"reports_dir", cfg.GetReportsDir())
}

func countAnomalies(records []anomaly.Record) int {
	count := 0
	for _, rec := range records {
		if rec.Anomaly {
			count++
		}
	}
	return count
}
