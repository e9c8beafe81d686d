// Package metrics exposes Prometheus instrumentation for the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "assetbeta"

// Recorder owns its registry so several recorders (one per test) can coexist.
type Recorder struct {
	registry *prometheus.Registry

	regressions     *prometheus.CounterVec
	regressionTime  prometheus.Histogram
	cacheLookups    *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New creates a recorder with Go runtime and process collectors registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		regressions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "regressions_total",
				Help:      "Regressions run, by outcome (ok or error kind)",
			},
			[]string{"outcome"},
		),
		regressionTime: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "regression_duration_seconds",
				Help:      "Time spent fitting one regression, data loading excluded",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "series_cache_lookups_total",
				Help:      "Series cache lookups, by result",
			},
			[]string{"result"},
		),
		providerLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_load_duration_seconds",
				Help:      "Duration of data provider loads",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider", "status"},
		),
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"route", "method"},
		),
	}
}

// RecordRegression records one regression outcome ("ok" or an error kind).
func (r *Recorder) RecordRegression(outcome string, seconds float64) {
	r.regressions.WithLabelValues(outcome).Inc()
	r.regressionTime.Observe(seconds)
}

// RecordCacheLookup records a series cache hit or miss.
func (r *Recorder) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// RecordProviderLoad records the latency of a provider load.
func (r *Recorder) RecordProviderLoad(provider string, err error, seconds float64) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.providerLatency.WithLabelValues(provider, status).Observe(seconds)
}

// RecordHTTPRequest records one served request. route should be the templated path.
func (r *Recorder) RecordHTTPRequest(route, method, status string, seconds float64) {
	r.httpRequests.WithLabelValues(route, method, status).Inc()
	r.httpDuration.WithLabelValues(route, method).Observe(seconds)
}

// Registry exposes the underlying registry (tests gather from it).
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
