package tuneloop

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tuneloop_runs_total",
		Help: "Total number of tuning runs started, by variant and outcome.",
	}, []string{"variant", "outcome"})

	evaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tuneloop_evaluations_total",
		Help: "Total number of successful scoring function evaluations.",
	}, []string{"variant"})

	evaluationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tuneloop_iteration_failures_total",
		Help: "Total number of failed iterations, by step.",
	}, []string{"variant", "op"})

	evaluationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tuneloop_evaluation_duration_seconds",
		Help:    "Wall clock duration of scoring function evaluations.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"variant"})
)
