package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics
type Metrics struct {
	// Ledger metrics
	TransactionsTotal   *prometheus.CounterVec
	OverdraftRejections prometheus.Counter
	DuplicateRejections prometheus.Counter
	CheckoutRowsTotal   *prometheus.CounterVec
	CheckoutBatches     *prometheus.CounterVec
	MirrorFailures      *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all metrics against the given registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := prometheus.WrapRegistererWith(nil, reg)

	m := &Metrics{
		TransactionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transactions_total",
				Help:      "Total number of committed ledger entries by type",
			},
			[]string{"type"},
		),
		OverdraftRejections: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "overdraft_rejections_total",
				Help:      "Total number of deductions rejected for insufficient balance",
			},
		),
		DuplicateRejections: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "duplicate_rejections_total",
				Help:      "Total number of operations rejected for a reused idempotency key",
			},
		),
		CheckoutRowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "checkout_rows_total",
				Help:      "Total number of batch checkout rows by result",
			},
			[]string{"result"},
		),
		CheckoutBatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "checkout_batches_total",
				Help:      "Total number of batch checkouts by outcome",
			},
			[]string{"outcome"},
		),
		MirrorFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mirror_failures_total",
				Help:      "Total number of log-sink mirror failures",
			},
			[]string{"kind"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	// Register all collectors
	factory.MustRegister(
		m.TransactionsTotal,
		m.OverdraftRejections,
		m.DuplicateRejections,
		m.CheckoutRowsTotal,
		m.CheckoutBatches,
		m.MirrorFailures,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	return m
}
