// Package metrics exposes the Prometheus instrumentation shared by the web
// server and the batch stages.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector on a private registry so tests can create
// isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	WSConnections       prometheus.Gauge

	StageRunsTotal   *prometheus.CounterVec
	StageDuration    *prometheus.HistogramVec
	RowsProcessed    *prometheus.CounterVec
	DatasetReloads   prometheus.Counter
	DatasetRowsGauge prometheus.Gauge
}

// New creates the collectors and registers them, along with the standard Go
// and process collectors, on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edupulse_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "edupulse_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		WSConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "edupulse_websocket_connections",
			Help: "Currently connected WebSocket clients.",
		}),
		StageRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edupulse_stage_runs_total",
			Help: "Stage executions by stage and result.",
		}, []string{"stage", "result"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "edupulse_stage_duration_seconds",
			Help:    "Stage execution time.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),
		RowsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edupulse_rows_processed_total",
			Help: "Rows read or written by stage and table.",
		}, []string{"stage", "table"}),
		DatasetReloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "edupulse_dataset_reloads_total",
			Help: "In-memory dataset reloads performed by the web server.",
		}),
		DatasetRowsGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "edupulse_dataset_rows",
			Help: "Rows in the in-memory cleaned dataset.",
		}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.WSConnections,
		m.StageRunsTotal,
		m.StageDuration,
		m.RowsProcessed,
		m.DatasetReloads,
		m.DatasetRowsGauge,
	)
	return m
}

// Handler returns the scrape endpoint handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
