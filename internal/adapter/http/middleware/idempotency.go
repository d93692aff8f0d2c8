package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/axiompay/internal/domain"
	"github.com/iho/axiompay/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader marks a response served from the store.
	IdempotencyReplayHeader = "X-Idempotency-Replay"

	maxKeyLength = 128
	maxBodyBytes = 64 << 10
)

// ReplayCounter counts responses served from the idempotency store.
type ReplayCounter interface {
	IncIdempotentReplay()
}

// IdempotencyMiddleware replays the stored response of a completed request
// carrying the same Idempotency-Key, so retried subscribe calls never issue a
// second schedule.
type IdempotencyMiddleware struct {
	store   usecase.IdempotencyStore
	ttl     time.Duration
	replays ReplayCounter
	logger  zerolog.Logger
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware. A zero ttl
// falls back to usecase.IdempotencyKeyTTL; replays may be nil.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration, replays ReplayCounter, logger zerolog.Logger) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = usecase.IdempotencyKeyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl, replays: replays, logger: logger}
}

// Wrap wraps an http.Handler with idempotency checking. A key is bound to
// the method, path and body of the request that first claimed it.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only apply to mutating requests
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		if len(key) > maxKeyLength {
			writeError(w, http.StatusBadRequest, domain.CategoryInvalidRequest, "Idempotency-Key is too long")
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, domain.CategoryInvalidRequest, "Request body is too large or unreadable")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		fp := fingerprint(r.Method, r.URL.Path, body)

		claim, err := json.Marshal(storedResponse{Fingerprint: fp, Pending: true})
		if err != nil {
			writeError(w, http.StatusInternalServerError, domain.CategoryInternal, "Internal server error")
			return
		}

		exists, cached, err := m.store.CheckAndSet(r.Context(), key, claim, m.ttl)
		if err != nil {
			m.logger.Error().Err(err).Str("idempotency_key", key).Msg("idempotency check failed")
			writeError(w, http.StatusServiceUnavailable, domain.CategoryTransientNetworkFailure, "Idempotency store unavailable, please try again")
			return
		}

		if exists {
			m.replay(w, key, fp, cached)
			return
		}

		// The outcome is already known to the ledger; do not let a client
		// disconnect lose it.
		ctx := context.WithoutCancel(r.Context())

		// Capture response
		recorder := &responseRecorder{
			statusRecorder: newStatusRecorder(w),
			body:           &bytes.Buffer{},
		}

		completed := false
		defer func() {
			// A panicking handler produced no result; free the key before
			// the panic reaches Recovery.
			if !completed {
				m.release(ctx, key)
			}
		}()

		next.ServeHTTP(recorder, r)
		completed = true

		if recorder.statusCode < 200 || recorder.statusCode >= 300 {
			m.release(ctx, key)
			return
		}

		stored, err := json.Marshal(storedResponse{
			Fingerprint: fp,
			Status:      recorder.statusCode,
			Body:        recorder.body.Bytes(),
		})
		if err == nil {
			err = m.store.Update(ctx, key, stored, m.ttl)
		}
		if err != nil {
			m.logger.Warn().Err(err).Str("idempotency_key", key).Msg("failed to store idempotent response")
		}
	})
}

func (m *IdempotencyMiddleware) replay(w http.ResponseWriter, key, fp string, cached []byte) {
	var stored storedResponse
	if len(cached) == 0 || string(cached) == usecase.IdempotencyPending || json.Unmarshal(cached, &stored) != nil {
		writeError(w, http.StatusConflict, domain.CategoryInvalidRequest, "A request with this Idempotency-Key is already in progress")
		return
	}

	if stored.Fingerprint != fp {
		m.logger.Warn().Str("idempotency_key", key).Msg("idempotency key reused with a different request")
		writeError(w, http.StatusUnprocessableEntity, domain.CategoryInvalidRequest, "Idempotency-Key was already used for a different request")
		return
	}

	if stored.Pending {
		writeError(w, http.StatusConflict, domain.CategoryInvalidRequest, "A request with this Idempotency-Key is already in progress")
		return
	}

	if m.replays != nil {
		m.replays.IncIdempotentReplay()
	}
	status := stored.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(IdempotencyReplayHeader, "true")
	w.WriteHeader(status)
	w.Write(stored.Body)
}

func (m *IdempotencyMiddleware) release(ctx context.Context, key string) {
	if err := m.store.Delete(ctx, key); err != nil {
		m.logger.Warn().Err(err).Str("idempotency_key", key).Msg("failed to release idempotency key")
	}
}

// storedResponse is the value kept under an idempotency key.
type storedResponse struct {
	Fingerprint string `json:"fingerprint"`
	Pending     bool   `json:"pending,omitempty"`
	Status      int    `json:"status,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// fingerprint identifies a request by method, path and body.
func fingerprint(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

type responseRecorder struct {
	*statusRecorder

	body *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.statusRecorder.Write(b)
}
