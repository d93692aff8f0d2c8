package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/axiompay/internal/adapter/http/dto"
	"github.com/iho/axiompay/internal/adapter/http/handler"
	apimiddleware "github.com/iho/axiompay/internal/adapter/http/middleware"
	redisrepo "github.com/iho/axiompay/internal/adapter/repository/redis"
	"github.com/iho/axiompay/internal/adapter/retry"
	"github.com/iho/axiompay/internal/domain"
	"github.com/iho/axiompay/internal/infrastructure/metrics"
	"github.com/iho/axiompay/internal/usecase"
)

type fakeEnvelope struct{ txID string }

func (e fakeEnvelope) TransactionID() string { return e.txID }

type fakeLedger struct {
	mu       sync.Mutex
	prepared []*domain.ScheduleRequest
	submits  int
	balance  domain.Balance
}

func (l *fakeLedger) Prepare(ctx context.Context, req *domain.ScheduleRequest) (usecase.Envelope, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prepared = append(l.prepared, req)
	return fakeEnvelope{txID: "0.0.2@1700000000.000000001"}, nil
}

func (l *fakeLedger) Submit(ctx context.Context, env usecase.Envelope) (*domain.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.submits++
	return &domain.Receipt{ScheduleID: "0.0.4242", TransactionID: env.TransactionID(), Status: "SUCCESS"}, nil
}

func (l *fakeLedger) QueryBalance(ctx context.Context, account domain.AccountRef) (domain.Balance, error) {
	return l.balance, nil
}

func (l *fakeLedger) submitCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.submits
}

type sequenceIDs struct{ n int }

func (g *sequenceIDs) Generate() string {
	g.n++
	return fmt.Sprintf("sub-%d", g.n)
}

func newRouterConfig(t *testing.T, ledger *fakeLedger, opts ...func(*RouterConfig)) RouterConfig {
	t.Helper()

	operator := &domain.OperatorIdentity{
		AccountID:       domain.MustParseAccountRef("0.0.2"),
		PrivateKey:      domain.NewSecret("302e020100300506032b657004220420"),
		BusinessAccount: domain.MustParseAccountRef("0.0.5005"),
		Network:         domain.NetworkTestnet,
	}

	subscriptionUC, err := usecase.NewSubscriptionUseCase(usecase.SubscriptionConfig{
		Ledger:      ledger,
		Operator:    operator,
		Explorer:    domain.Explorer{BaseURL: "https://hashscan.io", Network: domain.NetworkTestnet},
		ProductName: "Axiom Pay",
		Retrier:     retry.NewRetrier(retry.DefaultConfig(), zerolog.Nop()),
		IDGen:       &sequenceIDs{},
		Logger:      zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewSubscriptionUseCase: %v", err)
	}

	cfg := RouterConfig{
		SubscriptionHandler: handler.NewSubscriptionHandler(subscriptionUC, zerolog.Nop()),
		BalanceHandler:      handler.NewBalanceHandler(usecase.NewBalanceUseCase(ledger, nil), zerolog.Nop()),
		HealthHandler:       handler.NewHealthHandler(zerolog.Nop()),
		CORSAllowedOrigins:  []string{"*"},
		Logger:              zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig(t, &fakeLedger{}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_Subscribe(t *testing.T) {
	ledger := &fakeLedger{}
	router := NewRouter(newRouterConfig(t, ledger))

	body := `{"payerAccountId":"0.0.1001","amountUnits":5.5,"frequency":"monthly"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/subscribe", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.SubscriptionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ScheduleID != "0.0.4242" {
		t.Fatalf("unexpected schedule id %s", resp.ScheduleID)
	}
	if resp.ExplorerURL != "https://hashscan.io/testnet/schedule/0.0.4242" {
		t.Fatalf("unexpected explorer url %s", resp.ExplorerURL)
	}
	if len(ledger.prepared) != 1 || ledger.prepared[0].Memo != "Axiom Pay subscription: 5.5 HBAR" {
		t.Fatalf("unexpected prepared requests %+v", ledger.prepared)
	}
}

func TestNewRouter_SubscribeInvalidNeverReachesLedger(t *testing.T) {
	ledger := &fakeLedger{}
	router := NewRouter(newRouterConfig(t, ledger))

	body := `{"payerAccountId":"0.0.1001","amountUnits":-1}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/subscribe", strings.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if ledger.submitCount() != 0 {
		t.Fatalf("expected no ledger submissions")
	}
}

func TestNewRouter_Balance(t *testing.T) {
	router := NewRouter(newRouterConfig(t, &fakeLedger{balance: domain.Balance{Tinybars: 100_000_000}}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/balance/0.0.1001", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.BalanceResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Balance != "1" || resp.Tinybars != 100_000_000 {
		t.Fatalf("unexpected balance %+v", resp)
	}
}

func TestNewRouter_NotFound(t *testing.T) {
	router := NewRouter(newRouterConfig(t, &fakeLedger{}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "Endpoint not found" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(0.001, 1, nil)
	router := NewRouter(newRouterConfig(t, &fakeLedger{}, func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/balance/0.0.1001", nil)
		req.RemoteAddr = "1.2.3.4:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}

	// Health checks are outside the limited group.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "1.2.3.4:1234"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to bypass rate limiting, got %d", rec.Code)
	}
}

func TestNewRouter_IdempotentSubscribeReplays(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	ledger := &fakeLedger{}
	router := NewRouter(newRouterConfig(t, ledger, func(cfg *RouterConfig) {
		cfg.IdempotencyStore = redisrepo.NewIdempotencyStore(client)
		cfg.IdempotencyTTL = time.Hour
		cfg.Metrics = m
		cfg.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}))

	body := `{"payerAccountId":"0.0.1001","amountUnits":2}`
	responses := make([]string, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/subscribe", strings.NewReader(body))
		req.Header.Set(apimiddleware.IdempotencyKeyHeader, "order-77")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
		if i == 1 && rec.Header().Get(apimiddleware.IdempotencyReplayHeader) != "true" {
			t.Fatalf("expected second response to be a replay")
		}
		responses = append(responses, rec.Body.String())
	}

	if ledger.submitCount() != 1 {
		t.Fatalf("expected exactly one ledger submission, got %d", ledger.submitCount())
	}
	if responses[0] != responses[1] {
		t.Fatalf("expected identical responses")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected /metrics to return 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "axiompay_idempotent_replays_total 1") {
		t.Fatalf("expected replay counter in metrics output")
	}
}
