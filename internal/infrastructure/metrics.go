package infrastructure

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JaimeStill/counsel/pkg/graph"
	"github.com/JaimeStill/counsel/workflow"
)

// Metrics holds the pipeline collectors on a private registry.
type Metrics struct {
	registry     *prometheus.Registry
	nodeDuration *prometheus.HistogramVec
	nodeErrors   *prometheus.CounterVec
	runs         *prometheus.CounterVec
	runDuration  prometheus.Histogram
}

// NewMetrics registers the pipeline collectors plus the Go and process
// collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		nodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "counsel",
				Name:      "node_duration_seconds",
				Help:      "Duration of graph node executions",
				Buckets:   []float64{.01, .1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"graph", "node"},
		),
		nodeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "counsel",
				Name:      "node_errors_total",
				Help:      "Graph node executions that returned an error",
			},
			[]string{"graph", "node"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "counsel",
				Name:      "pipeline_runs_total",
				Help:      "Pipeline runs by final step",
			},
			[]string{"step"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "counsel",
				Name:      "pipeline_run_duration_seconds",
				Help:      "Wall time of pipeline runs",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 11),
			},
		),
	}

	m.registry.MustRegister(
		m.nodeDuration,
		m.nodeErrors,
		m.runs,
		m.runDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveNode records one node execution. It satisfies graph.Observer.
func (m *Metrics) ObserveNode(e graph.NodeEvent) {
	m.nodeDuration.WithLabelValues(e.Graph, e.Node).Observe(e.Duration.Seconds())
	if e.Err != nil {
		m.nodeErrors.WithLabelValues(e.Graph, e.Node).Inc()
	}
}

// ObserveRun records a finished pipeline run.
func (m *Metrics) ObserveRun(r *workflow.Result) {
	m.runs.WithLabelValues(string(r.State.Step)).Inc()
	m.runDuration.Observe(r.CompletedAt.Sub(r.StartedAt).Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
