// Package metric defines the Prometheus instrumentation for the query
// pipeline.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics contains the pipeline-level metrics.
type Metrics struct {
	RequestsTotal  *prometheus.CounterVec
	RejectsTotal   *prometheus.CounterVec
	StageDuration  *prometheus.HistogramVec
	ModelFallbacks prometheus.Counter
	RowsReturned   prometheus.Histogram
}

// NewMetrics creates the pipeline metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "semquery",
				Subsystem: "pipeline",
				Name:      "requests_total",
				Help:      "Total number of pipeline requests by outcome",
			},
			[]string{"outcome", "language"},
		),

		RejectsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "semquery",
				Subsystem: "pipeline",
				Name:      "rejects_total",
				Help:      "Total number of rejected requests by stage",
			},
			[]string{"stage"},
		),

		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "semquery",
				Subsystem: "pipeline",
				Name:      "stage_duration_seconds",
				Help:      "Pipeline stage duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),

		ModelFallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "semquery",
				Subsystem: "intent",
				Name:      "model_fallbacks_total",
				Help:      "Total number of model-extraction failures that fell back to rules",
			},
		),

		RowsReturned: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "semquery",
				Subsystem: "graph",
				Name:      "rows_returned",
				Help:      "Result rows returned per executed query",
				Buckets:   []float64{0, 1, 5, 10, 20, 50, 100},
			},
		),
	}
}

// RecordRequest increments the request counter.
func (m *Metrics) RecordRequest(outcome, language string) {
	m.RequestsTotal.WithLabelValues(outcome, language).Inc()
}

// RecordReject increments the reject counter for a stage.
func (m *Metrics) RecordReject(stage string) {
	m.RejectsTotal.WithLabelValues(stage).Inc()
}

// RecordStageDuration records one stage's duration.
func (m *Metrics) RecordStageDuration(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordModelFallback increments the model-fallback counter.
func (m *Metrics) RecordModelFallback() {
	m.ModelFallbacks.Inc()
}

// RecordRows records the row count of an executed query.
func (m *Metrics) RecordRows(n int) {
	m.RowsReturned.Observe(float64(n))
}

// Registry bundles the pipeline metrics with a dedicated Prometheus registry
// including Go runtime collectors.
type Registry struct {
	prometheusRegistry *prometheus.Registry
	Metrics            *Metrics
}

// NewRegistry creates a registry with the pipeline metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	m := NewMetrics()
	reg.MustRegister(
		m.RequestsTotal,
		m.RejectsTotal,
		m.StageDuration,
		m.ModelFallbacks,
		m.RowsReturned,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Registry{prometheusRegistry: reg, Metrics: m}
}

// PrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}
