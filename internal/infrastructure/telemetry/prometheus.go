package telemetry

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fincore"

// Metrics holds the Prometheus collectors served on /metrics
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	jobRuns     *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec

	hookDeliveries *prometheus.CounterVec
	hookDuration   prometheus.Histogram

	loanTransitions  *prometheus.CounterVec
	loanTransactions *prometheus.CounterVec
	loanAmounts      *prometheus.CounterVec
	journalsPosted   *prometheus.CounterVec
	journalsReversed prometheus.Counter
	journalAmounts   *prometheus.CounterVec
}

// NewMetrics creates a registry with the process and Go runtime collectors
// and every application metric.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "http", Name: "inflight_requests",
		Help: "Current number of in-flight HTTP requests.",
	})
	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "http", Name: "requests_total",
		Help: "Total number of HTTP requests handled.",
	}, []string{"method", "route", "status"})
	m.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
		Help:    "Duration of HTTP requests.",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"method", "route"})

	m.jobRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "scheduler", Name: "job_runs_total",
		Help: "Finished scheduler job attempts by kind and status.",
	}, []string{"kind", "status"})
	m.jobDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "scheduler", Name: "job_duration_seconds",
		Help:    "Duration of scheduler job attempts.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"kind"})

	m.hookDeliveries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "hooks", Name: "deliveries_total",
		Help: "Webhook delivery attempts by response class.",
	}, []string{"result"})
	m.hookDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "hooks", Name: "delivery_duration_seconds",
		Help:    "Duration of webhook delivery attempts.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
	})

	m.loanTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "loans", Name: "status_transitions_total",
		Help: "Loan lifecycle transitions.",
	}, []string{"from", "to"})
	m.loanTransactions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "loans", Name: "transactions_total",
		Help: "Loan transactions by type and currency.",
	}, []string{"type", "currency"})
	m.loanAmounts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "loans", Name: "transaction_amount_total",
		Help: "Sum of loan transaction amounts by type and currency.",
	}, []string{"type", "currency"})
	m.journalsPosted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "accounting", Name: "journal_transactions_total",
		Help: "Posted journal transactions by origin.",
	}, []string{"origin"})
	m.journalsReversed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "accounting", Name: "journal_reversals_total",
		Help: "Reversed journal transactions.",
	})
	m.journalAmounts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "accounting", Name: "journal_debits_total",
		Help: "Sum of debits posted by currency.",
	}, []string{"currency"})

	m.registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
		m.httpInFlight, m.httpRequests, m.httpDuration,
		m.jobRuns, m.jobDuration,
		m.hookDeliveries, m.hookDuration,
		m.loanTransitions, m.loanTransactions, m.loanAmounts,
		m.journalsPosted, m.journalsReversed, m.journalAmounts,
	)
	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RegisterDB adds connection pool statistics for db
func (m *Metrics) RegisterDB(name string, db *sql.DB) error {
	return m.registry.Register(collectors.NewDBStatsCollector(db, name))
}

// RequestStarted tracks an in-flight request; call the returned func when
// it completes.
func (m *Metrics) RequestStarted() func() {
	m.httpInFlight.Inc()
	return m.httpInFlight.Dec
}

// ObserveHTTP records a finished request. route is the matched pattern, not
// the raw path.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveJob records a finished scheduler job attempt
func (m *Metrics) ObserveJob(kind, status string, d time.Duration) {
	m.jobRuns.WithLabelValues(kind, status).Inc()
	m.jobDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveDelivery records a webhook attempt
func (m *Metrics) ObserveDelivery(status int, d time.Duration, err error) {
	m.hookDeliveries.WithLabelValues(deliveryResult(status, err)).Inc()
	m.hookDuration.Observe(d.Seconds())
}

func deliveryResult(status int, err error) string {
	switch {
	case status == 0 && err != nil:
		return "error"
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
