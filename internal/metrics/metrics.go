// Package metrics exposes Prometheus instrumentation for the optimizer
// service. A dedicated registry keeps the scrape surface limited to what the
// service registers itself.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/routeforce/routeforce/internal/optimization"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	Registry *prometheus.Registry

	OptimizationRuns     *prometheus.CounterVec
	OptimizationDuration prometheus.Histogram
	ParetoFrontSize      prometheus.Histogram
	StopsPerRequest      prometheus.Histogram
	ActiveJobs           prometheus.Gauge
}

var (
	defaultOnce sync.Once
	defaultInst *Metrics
)

// Default returns the process-wide metrics instance.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultInst = New()
	})
	return defaultInst
}

// New creates a Metrics with a fresh registry. Tests use this to avoid
// duplicate-registration panics across cases.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		OptimizationRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "routeforce",
			Name:      "optimization_runs_total",
			Help:      "Optimization runs by final status.",
		}, []string{"status"}),
		OptimizationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "routeforce",
			Name:      "optimization_duration_seconds",
			Help:      "Wall-clock duration of optimization runs.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		ParetoFrontSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "routeforce",
			Name:      "pareto_front_size",
			Help:      "Size of the first Pareto front at the end of a run.",
			Buckets:   prometheus.LinearBuckets(1, 5, 10),
		}),
		StopsPerRequest: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "routeforce",
			Name:      "stops_per_request",
			Help:      "Number of stops per optimization request.",
			Buckets:   prometheus.ExponentialBuckets(2, 2, 10),
		}),
		ActiveJobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "routeforce",
			Name:      "active_jobs",
			Help:      "Asynchronous optimization jobs currently running.",
		}),
	}

	reg.MustRegister(
		m.OptimizationRuns,
		m.OptimizationDuration,
		m.ParetoFrontSize,
		m.StopsPerRequest,
		m.ActiveJobs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler returns the HTTP handler serving this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveRun records the outcome of one optimization run.
func (m *Metrics) ObserveRun(stops int, out *optimization.Outcome) {
	status := "completed"
	if out.Degraded {
		status = "degraded"
	}
	m.OptimizationRuns.WithLabelValues(status).Inc()
	m.OptimizationDuration.Observe(out.Metrics.ProcessingTime)
	m.StopsPerRequest.Observe(float64(stops))
	if !out.Degraded {
		m.ParetoFrontSize.Observe(float64(out.Metrics.ParetoFrontSize))
	}
}
