package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/axiompay/internal/domain"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := New(registry)

	if m.Issuances == nil || m.HTTPRequests == nil || m.BalanceQueries == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.ObserveHTTPRequest("GET", "/health", 200, time.Millisecond)

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestObserveIssuanceOutcomes(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveIssuance("", 2*time.Second)
	m.ObserveIssuance("", time.Second)
	m.ObserveIssuance(domain.CategoryLedgerRejected, time.Second)
	m.IncSubmitRetries(2)

	if got := testutil.ToFloat64(m.Issuances.WithLabelValues("success")); got != 2 {
		t.Fatalf("expected 2 successes, got %v", got)
	}
	if got := testutil.ToFloat64(m.Issuances.WithLabelValues("ledger_rejected")); got != 1 {
		t.Fatalf("expected 1 rejection, got %v", got)
	}
	if got := testutil.ToFloat64(m.SubmitRetries); got != 2 {
		t.Fatalf("expected 2 retries, got %v", got)
	}
}

func TestObserveEventAndHTTP(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveEvent(domain.EventTypeSubscriptionScheduled, nil)
	m.ObserveEvent(domain.EventTypeSubscriptionScheduled, errors.New("down"))
	m.ObserveBalanceQuery(domain.CategoryTransientNetworkFailure, time.Millisecond)
	m.HTTPStarted()
	m.IncRateLimited()

	if got := testutil.ToFloat64(m.EventsPublished.WithLabelValues(domain.EventTypeSubscriptionScheduled, "error")); got != 1 {
		t.Fatalf("expected 1 failed publish, got %v", got)
	}
	if got := testutil.ToFloat64(m.BalanceQueries.WithLabelValues("transient_network_failure")); got != 1 {
		t.Fatalf("expected 1 transient balance query, got %v", got)
	}
	if got := testutil.ToFloat64(m.HTTPInFlight); got != 1 {
		t.Fatalf("expected 1 in-flight request, got %v", got)
	}
	if got := testutil.ToFloat64(m.RateLimitHits); got != 1 {
		t.Fatalf("expected 1 rate limit hit, got %v", got)
	}
}
