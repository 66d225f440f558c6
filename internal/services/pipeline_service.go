package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"retailbi/internal/anomaly"
	"retailbi/internal/dataprocessing"
	"retailbi/internal/forecast"
	"retailbi/pkg/contracts/domain"
)

// PipelineOptions override per-run parameters. Zero values fall back to
// the configured defaults.
type PipelineOptions struct {
	Horizon    int
	ZThreshold float64
}

// PipelineResult is the cached output of one completed pipeline run.
type PipelineResult struct {
	RunID            string                  `json:"run_id"`
	StartedAt        time.Time               `json:"started_at"`
	Duration         time.Duration           `json:"duration"`
	TransactionCount int                     `json:"transaction_count"`
	Monthly          []domain.MonthlyRevenue `json:"monthly"`
	Series           forecast.Series         `json:"series"`
	Forecast         *forecast.Result        `json:"forecast"`
	Anomalies        []anomaly.Record        `json:"anomalies"`
}

// PipelineService runs the batch pipeline and caches its latest result
type PipelineService struct {
	parser     *dataprocessing.Parser
	aggregator *dataprocessing.Aggregator
	engine     *forecast.Engine
	logger     *slog.Logger

	horizon    int
	zThreshold float64

	runMu   sync.Mutex // held for the duration of a run
	running bool

	mu   sync.RWMutex
	last *PipelineResult
}

// NewPipelineService creates a pipeline service with the given defaults
func NewPipelineService(horizon int, zThreshold float64, logger *slog.Logger) *PipelineService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PipelineService{
		parser:     dataprocessing.NewParser(logger),
		aggregator: dataprocessing.NewAggregator(logger),
		engine:     forecast.NewEngine(logger),
		logger:     logger.With(slog.String("component", "pipeline_service")),
		horizon:    horizon,
		zThreshold: zThreshold,
	}
}

// Run executes the full pipeline against the given input file. Only one
// run may be in flight at a time; concurrent calls get ErrPipelineRunning.
func (s *PipelineService) Run(ctx context.Context, inputPath string, opts PipelineOptions) (*PipelineResult, error) {
	s.runMu.Lock()
	if s.running {
		s.runMu.Unlock()
		return nil, ErrPipelineRunning
	}
	s.running = true
	s.runMu.Unlock()

	defer func() {
		s.runMu.Lock()
		s.running = false
		s.runMu.Unlock()
	}()

	horizon := opts.Horizon
	if horizon <= 0 {
		horizon = s.horizon
	}
	zThreshold := opts.ZThreshold
	if zThreshold <= 0 {
		zThreshold = s.zThreshold
	}

	runID := uuid.New().String()
	start := time.Now()

	s.logger.InfoContext(ctx, "pipeline run started",
		slog.String("run_id", runID),
		slog.String("input", inputPath),
		slog.Int("horizon", horizon),
		slog.Float64("z_threshold", zThreshold))

	result, err := s.execute(ctx, inputPath, runID, start, horizon, zThreshold)
	pipelineDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		pipelineRunsTotal.WithLabelValues("error").Inc()
		s.logger.ErrorContext(ctx, "pipeline run failed",
			slog.String("run_id", runID),
			slog.String("error", err.Error()))
		return nil, err
	}
	pipelineRunsTotal.WithLabelValues("success").Inc()

	s.mu.Lock()
	s.last = result
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "pipeline run completed",
		slog.String("run_id", runID),
		slog.Int("transactions", result.TransactionCount),
		slog.Int("months", result.Series.Len()),
		slog.String("method", string(result.Forecast.Method)),
		slog.Duration("duration", result.Duration))

	return result, nil
}

func (s *PipelineService) execute(ctx context.Context, inputPath, runID string, start time.Time, horizon int, zThreshold float64) (*PipelineResult, error) {
	transactions, err := s.parser.ParseFile(ctx, inputPath)
	if err != nil {
		return nil, fmt.Errorf("parse transactions: %w", err)
	}

	monthly := s.aggregator.Aggregate(ctx, transactions)

	series, err := forecast.BuildMonthlySeries(dataprocessing.MonthlyTotals(monthly))
	if err != nil {
		return nil, fmt.Errorf("build revenue series: %w", err)
	}

	fc, err := s.engine.Forecast(ctx, series, horizon)
	if err != nil {
		return nil, fmt.Errorf("forecast revenue: %w", err)
	}
	forecastMethodTotal.WithLabelValues(string(fc.Method)).Inc()

	detector := anomaly.NewDetector(zThreshold, s.logger)
	records := detector.Detect(ctx, fc.Residuals)
	for _, rec := range records {
		if rec.Anomaly {
			anomaliesDetected.Inc()
		}
	}

	return &PipelineResult{
		RunID:            runID,
		StartedAt:        start,
		Duration:         time.Since(start),
		TransactionCount: len(transactions),
		Monthly:          monthly,
		Series:           series,
		Forecast:         fc,
		Anomalies:        records,
	}, nil
}

// Latest returns the result of the most recent completed run
func (s *PipelineService) Latest() (*PipelineResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.last == nil {
		return nil, ErrNoPipelineRun
	}
	return s.last, nil
}

// DetectAnomalies recomputes anomaly records from the latest run's
// residuals with a caller-supplied threshold. The cached result is
// not modified.
func (s *PipelineService) DetectAnomalies(ctx context.Context, threshold float64) ([]anomaly.Record, error) {
	last, err := s.Latest()
	if err != nil {
		return nil, err
	}

	detector := anomaly.NewDetector(threshold, s.logger)
	return detector.Detect(ctx, last.Forecast.Residuals), nil
}

// RescaleForecast returns the latest forecast points widened to the
// requested confidence level.
func (s *PipelineService) RescaleForecast(level int) ([]forecast.ForecastPoint, error) {
	last, err := s.Latest()
	if err != nil {
		return nil, err
	}

	return forecast.Rescale(last.Forecast.Points, level), nil
}
