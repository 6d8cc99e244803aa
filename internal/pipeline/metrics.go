package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the per-process Prometheus collectors for question runs.
type Metrics struct {
	Registry *prometheus.Registry

	// ScoringCalls counts scorer invocations.
	// Labels: result (success, error)
	ScoringCalls *prometheus.CounterVec

	// ScoringDuration tracks how long one chunk takes to score.
	ScoringDuration prometheus.Histogram

	// Documents counts documents seen by the runner.
	// Labels: status (processed, skipped)
	Documents *prometheus.CounterVec

	// Chunks counts chunks submitted for scoring.
	Chunks prometheus.Counter
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		ScoringCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "curioqa",
				Name:      "scoring_calls_total",
				Help:      "Total number of chunk scoring calls",
			},
			[]string{"result"},
		),
		ScoringDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "curioqa",
				Name:      "scoring_duration_seconds",
				Help:      "Duration of chunk scoring calls in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
		),
		Documents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "curioqa",
				Name:      "documents_total",
				Help:      "Total number of documents by processing status",
			},
			[]string{"status"},
		),
		Chunks: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "curioqa",
				Name:      "chunks_total",
				Help:      "Total number of chunks submitted for scoring",
			},
		),
	}
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
