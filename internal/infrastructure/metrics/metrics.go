package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/axiompay/internal/domain"
)

const namespace = "axiompay"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Issuance metrics
	Issuances        *prometheus.CounterVec
	IssuanceDuration prometheus.Histogram
	SubmitRetries    prometheus.Counter

	// Balance metrics
	BalanceQueries  *prometheus.CounterVec
	BalanceDuration prometheus.Histogram

	// Event metrics
	EventsPublished *prometheus.CounterVec

	// API metrics
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	HTTPInFlight     prometheus.Gauge
	RateLimitHits    prometheus.Counter
	IdempotentReplay prometheus.Counter
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		Issuances: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "schedule_issuances_total",
				Help:      "Schedule issuance attempts by outcome category",
			},
			[]string{"outcome"},
		),
		IssuanceDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "schedule_issuance_duration_seconds",
			Help:      "Duration of schedule issuance including ledger round-trips",
			Buckets:   []float64{.1, .25, .5, 1, 2, 3, 5, 8, 13, 20},
		}),
		SubmitRetries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_submit_retries_total",
			Help:      "Resubmissions of a signed envelope after a transient failure",
		}),

		BalanceQueries: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "balance_queries_total",
				Help:      "Balance queries by outcome category",
			},
			[]string{"outcome"},
		),
		BalanceDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "balance_query_duration_seconds",
			Help:      "Duration of ledger balance queries",
			Buckets:   prometheus.DefBuckets,
		}),

		EventsPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Domain events handed to the event sink",
			},
			[]string{"type", "status"},
		),

		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),
		RateLimitHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Requests rejected by the rate limiter",
		}),
		IdempotentReplay: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "idempotent_replays_total",
			Help:      "Responses served from the idempotency store",
		}),
	}
}

// ObserveIssuance implements usecase.Metrics.
func (m *Metrics) ObserveIssuance(category domain.Category, d time.Duration) {
	m.Issuances.WithLabelValues(outcome(category)).Inc()
	m.IssuanceDuration.Observe(d.Seconds())
}

// IncSubmitRetries implements usecase.Metrics.
func (m *Metrics) IncSubmitRetries(n int) {
	m.SubmitRetries.Add(float64(n))
}

// ObserveBalanceQuery implements usecase.Metrics.
func (m *Metrics) ObserveBalanceQuery(category domain.Category, d time.Duration) {
	m.BalanceQueries.WithLabelValues(outcome(category)).Inc()
	m.BalanceDuration.Observe(d.Seconds())
}

// ObserveEvent records one publish attempt.
func (m *Metrics) ObserveEvent(eventType string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.EventsPublished.WithLabelValues(eventType, status).Inc()
}

// ObserveHTTPRequest records a completed HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// HTTPStarted and HTTPFinished track in-flight requests.
func (m *Metrics) HTTPStarted()  { m.HTTPInFlight.Inc() }
func (m *Metrics) HTTPFinished() { m.HTTPInFlight.Dec() }

// IncRateLimited counts a rejected request.
func (m *Metrics) IncRateLimited() { m.RateLimitHits.Inc() }

// IncIdempotentReplay counts a replayed response.
func (m *Metrics) IncIdempotentReplay() { m.IdempotentReplay.Inc() }

func outcome(c domain.Category) string {
	if c == "" {
		return "success"
	}
	return string(c)
}
