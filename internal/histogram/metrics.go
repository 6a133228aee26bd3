package histogram

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	executionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tracelens_histogram_executions_total",
			Help: "Total number of completed histogram executions.",
		},
	)
	executeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tracelens_histogram_execute_duration_seconds",
			Help:    "Wall time spent in a histogram execution.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
	)
	contributionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracelens_histogram_contributions_total",
			Help: "Leaf contributions accumulated, by kind (semantic, communication).",
		},
		[]string{"kind"},
	)
	discretizationMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracelens_histogram_discretization_misses_total",
			Help: "Contributions dropped because the value fell outside the axis range, by axis (column, plane).",
		},
		[]string{"axis"},
	)
	rowsClosedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tracelens_histogram_rows_closed_total",
			Help: "Total number of histogram rows closed out.",
		},
	)
)

// executeStats is counted locally during a traversal and flushed once.
type executeStats struct {
	semantic   int
	comm       int
	columnMiss int
	planeMiss  int
	rowsClosed int
}

func (s executeStats) flush() {
	executionsTotal.Inc()
	contributionsTotal.WithLabelValues("semantic").Add(float64(s.semantic))
	contributionsTotal.WithLabelValues("communication").Add(float64(s.comm))
	discretizationMisses.WithLabelValues("column").Add(float64(s.columnMiss))
	discretizationMisses.WithLabelValues("plane").Add(float64(s.planeMiss))
	rowsClosedTotal.Add(float64(s.rowsClosed))
}
