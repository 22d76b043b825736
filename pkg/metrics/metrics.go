// Package metrics registers the Prometheus collectors the pricing loop
// updates every round, built directly on github.com/prometheus/client_golang
// without any extra metrics-registry wrapper layer
// rather than introducing one).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles every collector the pricing loop touches. Callers that
// don't want Prometheus wiring (unit tests, the synthetic demo CLI) can use
// NewUnregistered and simply never expose it on a /metrics handler.
type Metrics struct {
	ColumnsGenerated  *prometheus.CounterVec
	ColumnsKept       *prometheus.CounterVec
	ColumnsPooled     prometheus.Gauge
	Rounds            prometheus.Counter
	RoundDuration     prometheus.Histogram
	BlockSolveSeconds *prometheus.HistogramVec
	BlockSolveCount   *prometheus.CounterVec
	LowerBound        prometheus.Gauge
}

const namespace = "pricing"

// New builds a Metrics bundle and registers every collector with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := newUnregistered()
	reg.MustRegister(
		m.ColumnsGenerated,
		m.ColumnsKept,
		m.ColumnsPooled,
		m.Rounds,
		m.RoundDuration,
		m.BlockSolveSeconds,
		m.BlockSolveCount,
		m.LowerBound,
	)
	return m
}

// NewUnregistered builds a Metrics bundle without touching any Registerer,
// for tests and for embedding callers that manage their own registry
// lifecycle.
func NewUnregistered() *Metrics {
	return newUnregistered()
}

func newUnregistered() *Metrics {
	return &Metrics{
		ColumnsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "columns_generated_total",
			Help:      "Columns produced by a block solver, by block and solver name.",
		}, []string{"block", "solver"}),
		ColumnsKept: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "columns_kept_total",
			Help:      "Columns accepted into the master LP by PriceStore.ApplyCols, by block.",
		}, []string{"block"}),
		ColumnsPooled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "columns_pooled",
			Help:      "Current number of columns archived in the ColumnPool.",
		}),
		Rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_total",
			Help:      "Pricing rounds completed.",
		}),
		RoundDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "round_duration_seconds",
			Help:      "Wall-clock duration of one pricing round.",
			Buckets:   prometheus.DefBuckets,
		}),
		BlockSolveSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "block_solve_seconds",
			Help:      "Wall-clock duration of one block solver invocation, by block and solver name.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"block", "solver"}),
		BlockSolveCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "block_solves_total",
			Help:      "Block solver invocations, by block, solver name, and resulting status.",
		}, []string{"block", "solver", "status"}),
		LowerBound: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lagrangian_lower_bound",
			Help:      "Most recently computed Lagrangian lower bound for the current node.",
		}),
	}
}
