package graph

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BuildsTotal counts finished builds.
	// Labels: result (success, transcription_error, no_concepts, configuration_error, error)
	BuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lecturemap",
			Subsystem: "graph",
			Name:      "builds_total",
			Help:      "Total number of graph builds by result",
		},
		[]string{"result"},
	)

	BuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "lecturemap",
			Subsystem: "graph",
			Name:      "build_duration_seconds",
			Help:      "Duration of complete graph builds in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lecturemap",
			Subsystem: "graph",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	// EdgeDrops counts edge candidates rejected by validation.
	// Labels: reason (malformed, invalid_id, self_loop, invalid_relation, integrity, duplicate)
	EdgeDrops = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lecturemap",
			Subsystem: "graph",
			Name:      "edge_drops_total",
			Help:      "Total number of edge candidates dropped by validation",
		},
		[]string{"reason"},
	)

	// ExtractionFailures counts proposer calls that failed after retries.
	// Labels: stage
	ExtractionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lecturemap",
			Subsystem: "graph",
			Name:      "extraction_failures_total",
			Help:      "Total number of failed concept or edge extraction calls",
		},
		[]string{"stage"},
	)

	ResidualIsolated = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lecturemap",
			Subsystem: "graph",
			Name:      "residual_isolated_concepts",
			Help:      "Concepts left without edges after the last build",
		},
	)
)

func recordValidation(s ValidationSummary) {
	for reason, n := range s.Dropped {
		if n > 0 {
			EdgeDrops.WithLabelValues(string(reason)).Add(float64(n))
		}
	}
}
