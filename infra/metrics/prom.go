package metrics

import (
	"math"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/rcpspoc/core/metrics"
)

// PromSink records solver runs in Prometheus metrics.
type PromSink struct {
	runs      *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	nodes     *prometheus.CounterVec
	profit    *prometheus.GaugeVec
	incumbent *prometheus.GaugeVec
}

// NewPromSink registers solver metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solver_runs_total",
		Help: "Total number of branch-and-bound runs",
	}, []string{"status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "solver_run_duration_seconds",
		Help:    "Wall-clock duration of branch-and-bound runs",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"status"})
	nodes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solver_nodes_total",
		Help: "Search nodes visited and branches bounded",
	}, []string{"kind"})
	profit := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "solver_profit",
		Help: "Profit of the last finished run per instance",
	}, []string{"instance"})
	incumbent := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "solver_incumbent_profit",
		Help: "Best profit found so far by the running search per instance",
	}, []string{"instance"})

	var err error
	if runs, err = register(reg, runs); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if nodes, err = register(reg, nodes); err != nil {
		return nil, err
	}
	if profit, err = register(reg, profit); err != nil {
		return nil, err
	}
	if incumbent, err = register(reg, incumbent); err != nil {
		return nil, err
	}
	return &PromSink{runs: runs, duration: duration, nodes: nodes, profit: profit, incumbent: incumbent}, nil
}

// register returns the collector already registered under the same
// descriptor when there is one.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordSolve counts the run and exports its profit.
func (s *PromSink) RecordSolve(ev coremetrics.SolveEvent) error {
	s.runs.WithLabelValues(ev.Status).Inc()
	s.duration.WithLabelValues(ev.Status).Observe(ev.Duration.Seconds())
	s.nodes.WithLabelValues("visited").Add(float64(ev.Nodes))
	s.nodes.WithLabelValues("bounded").Add(float64(ev.Bounded))
	if !math.IsInf(ev.Profit, 0) {
		s.profit.WithLabelValues(ev.Instance).Set(ev.Profit)
	}
	return nil
}

// RecordProgress exports the incumbent of a running search.
func (s *PromSink) RecordProgress(ev coremetrics.ProgressEvent) error {
	if !math.IsInf(ev.Incumbent, 0) {
		s.incumbent.WithLabelValues(ev.Instance).Set(ev.Incumbent)
	}
	return nil
}
