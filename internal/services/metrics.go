package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pipelineRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "retailbi",
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Total number of pipeline runs by outcome.",
	}, []string{"status"})

	pipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "retailbi",
		Subsystem: "pipeline",
		Name:      "run_duration_seconds",
		Help:      "Duration of pipeline runs in seconds.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	forecastMethodTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "retailbi",
		Subsystem: "forecast",
		Name:      "method_total",
		Help:      "Forecast runs by method used.",
	}, []string{"method"})

	anomaliesDetected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "retailbi",
		Subsystem: "anomaly",
		Name:      "detected_total",
		Help:      "Total number of anomalous months flagged.",
	})
)
