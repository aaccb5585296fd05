package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	// Replace global default registry to allow test inspection.
	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry

	m := New()

	if m.TransactionsProcessed == nil || m.ConsistencyWarnings == nil || m.HTTPRequestsTotal == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestInstrumentationCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry

	m := New()

	m.TransactionProcessed("deposit")
	m.TransactionProcessed("deposit")
	m.TransactionFailed("withdrawal")
	m.ConsistencyWarning("panel")
	m.ResetCompleted()
	m.AuditWriteFailed()

	if got := testutil.ToFloat64(m.TransactionsProcessed.WithLabelValues("deposit")); got != 2 {
		t.Fatalf("expected 2 processed deposits, got %v", got)
	}

	if got := testutil.ToFloat64(m.TransactionsFailed.WithLabelValues("withdrawal")); got != 1 {
		t.Fatalf("expected 1 failed withdrawal, got %v", got)
	}

	if got := testutil.ToFloat64(m.ConsistencyWarnings.WithLabelValues("panel")); got != 1 {
		t.Fatalf("expected 1 consistency warning, got %v", got)
	}

	if got := testutil.ToFloat64(m.ResetsCompleted); got != 1 {
		t.Fatalf("expected 1 completed reset, got %v", got)
	}

	if got := testutil.ToFloat64(m.AuditWriteFailures); got != 1 {
		t.Fatalf("expected 1 audit write failure, got %v", got)
	}
}
