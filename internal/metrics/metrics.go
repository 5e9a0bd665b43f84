package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a registry so each router or test gets its own collectors.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	SchedulerRunsTotal  *prometheus.CounterVec
	RemindersCreated    prometheus.Counter
	TokensPurged        prometheus.Counter
	DBConnectionsOpen   prometheus.GaugeFunc
}

// New registers the collectors. dbOpenConns may be nil.
func New(dbOpenConns func() float64) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		SchedulerRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scheduler_runs_total",
				Help: "Scheduled job runs by job and result",
			},
			[]string{"job", "result"},
		),
		RemindersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "due_date_reminders_created_total",
			Help: "Due-date reminder notifications created by the sweep",
		}),
		TokensPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "invalid_tokens_purged_total",
			Help: "Expired blocklist entries removed",
		}),
	}

	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SchedulerRunsTotal,
		m.RemindersCreated,
		m.TokensPurged,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if dbOpenConns != nil {
		m.DBConnectionsOpen = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "database_connections_open",
			Help: "Number of open database connections",
		}, dbOpenConns)
		m.registry.MustRegister(m.DBConnectionsOpen)
	}

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
