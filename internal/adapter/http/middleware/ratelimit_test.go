package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type rateLimitCounter struct{ n int }

func (c *rateLimitCounter) IncRateLimited() { c.n++ }

func TestRateLimiter_Limit(t *testing.T) {
	hits := &rateLimitCounter{}
	rl := NewRateLimiter(0.001, 2, hits)

	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/balance/0.0.1", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}
	if hits.n != 1 {
		t.Fatalf("expected one rate limit hit, got %d", hits.n)
	}

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/api/balance/0.0.1", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected second client to pass, got %d", rr.Code)
	}
}

func TestRateLimiter_KeysByHost(t *testing.T) {
	rl := NewRateLimiter(0.001, 1, nil)

	for _, addr := range []string{"10.0.0.1:1000", "10.0.0.1:2000"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rl.getLimiter(clientIP(req))
	}

	if got := rl.size(); got != 1 {
		t.Fatalf("expected ports to share one limiter, got %d", got)
	}
}

func TestRateLimiter_CleanupLimiters(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1, nil)
	rl.now = func() time.Time { return now }

	rl.getLimiter("10.0.0.1")
	now = now.Add(2 * time.Hour)
	rl.getLimiter("10.0.0.2")

	rl.CleanupLimiters(time.Hour)

	if got := rl.size(); got != 1 {
		t.Fatalf("expected only the recent limiter to survive, got %d", got)
	}
}
