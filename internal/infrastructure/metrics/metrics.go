package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	TransactionsProcessed *prometheus.CounterVec
	TransactionsFailed    *prometheus.CounterVec
	ConsistencyWarnings   *prometheus.CounterVec
	ResetsCompleted       prometheus.Counter
	AuditWriteFailures    prometheus.Counter
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
}

// New creates and registers all metrics with the default registry.
func New() *Metrics {
	return &Metrics{
		TransactionsProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "panelledger_transactions_processed_total",
				Help: "Total number of processed ledger transactions by reference type.",
			},
			[]string{"reference_type"},
		),
		TransactionsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "panelledger_transactions_failed_total",
				Help: "Total number of failed ledger transactions by reference type.",
			},
			[]string{"reference_type"},
		),
		ConsistencyWarnings: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "panelledger_consistency_warnings_total",
				Help: "Total number of ledger consistency warnings by entity type.",
			},
			[]string{"entity_type"},
		),
		ResetsCompleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "panelledger_resets_completed_total",
				Help: "Total number of completed daily ledger resets.",
			},
		),
		AuditWriteFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "panelledger_audit_write_failures_total",
				Help: "Total number of audit log writes that failed.",
			},
		),
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "panelledger_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "panelledger_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// TransactionProcessed records a successfully applied transaction.
func (m *Metrics) TransactionProcessed(referenceType string) {
	m.TransactionsProcessed.WithLabelValues(referenceType).Inc()
}

// TransactionFailed records a rejected or failed transaction.
func (m *Metrics) TransactionFailed(referenceType string) {
	m.TransactionsFailed.WithLabelValues(referenceType).Inc()
}

// ConsistencyWarning records a balance divergence for an entity type.
func (m *Metrics) ConsistencyWarning(entityType string) {
	m.ConsistencyWarnings.WithLabelValues(entityType).Inc()
}

// ResetCompleted records a completed daily reset.
func (m *Metrics) ResetCompleted() {
	m.ResetsCompleted.Inc()
}

// AuditWriteFailed records a failed audit log write.
func (m *Metrics) AuditWriteFailed() {
	m.AuditWriteFailures.Inc()
}
