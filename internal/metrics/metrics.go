package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the channel sync service
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Sync Metrics
	SyncRunsTotal        prometheus.CounterVec
	SyncRunDuration      prometheus.HistogramVec
	SyncRunsInFlight     prometheus.Gauge
	EventsFetchedTotal   prometheus.CounterVec
	BookingsWrittenTotal prometheus.CounterVec
	ConflictsTotal       prometheus.CounterVec
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "channelsync_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "channelsync_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "channelsync_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Sync Metrics
		SyncRunsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "channelsync_sync_runs_total",
				Help: "Total sync runs by platform, trigger type and final status",
			},
			[]string{"platform", "sync_type", "status"},
		),
		SyncRunDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "channelsync_sync_run_duration_seconds",
				Help:    "Sync run duration in seconds, fetch through persistence",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"platform"},
		),
		SyncRunsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "channelsync_sync_runs_in_flight",
				Help: "Number of sync runs currently executing",
			},
		),
		EventsFetchedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "channelsync_events_fetched_total",
				Help: "Total external events fetched by platform",
			},
			[]string{"platform"},
		),
		BookingsWrittenTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "channelsync_bookings_written_total",
				Help: "Total bookings written by platform and operation",
			},
			[]string{"platform", "operation"},
		),
		ConflictsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "channelsync_conflicts_total",
				Help: "Total date-range conflicts detected by platform",
			},
			[]string{"platform"},
		),
	}
}
