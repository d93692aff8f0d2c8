package usecase

import "time"

const (
	// DefaultMaxInFlight bounds concurrent ledger submissions when the
	// gate is built without an explicit limit.
	DefaultMaxInFlight = 16

	// MaxProductNameBytes keeps the rendered memo inside the ledger memo limit
	// for any amount up to the maximum.
	MaxProductNameBytes = 48

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyPending is stored under a key while its request is still running.
	IdempotencyPending = "processing"

	// PublishTimeout bounds best-effort event delivery after issuance.
	PublishTimeout = 5 * time.Second
)
