package usecase

import (
	"context"
	"time"

	"github.com/iho/axiompay/internal/domain"
)

// Envelope is a frozen, signed schedule-creation transaction. Resubmitting the
// same envelope reuses its ledger transaction id.
type Envelope interface {
	TransactionID() string
}

// LedgerClient is the ledger session held for the life of the process. It is
// safe for concurrent use.
type LedgerClient interface {
	// Prepare builds, freezes and signs the schedule-creation transaction.
	Prepare(ctx context.Context, req *domain.ScheduleRequest) (Envelope, error)
	// Submit sends env and waits for its receipt. It does not abort on ctx
	// cancellation once the envelope has been handed to the network.
	Submit(ctx context.Context, env Envelope) (*domain.Receipt, error)
	// QueryBalance returns the current native balance of account.
	QueryBalance(ctx context.Context, account domain.AccountRef) (domain.Balance, error)
}

// Retrier runs an operation with bounded retries on transient failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// EventPublisher delivers domain events to downstream consumers.
type EventPublisher interface {
	PublishSubscriptionScheduled(ctx context.Context, event domain.SubscriptionScheduledEvent) error
}

// Metrics records use case level measurements.
type Metrics interface {
	ObserveIssuance(category domain.Category, duration time.Duration)
	IncSubmitRetries(n int)
	ObserveBalanceQuery(category domain.Category, duration time.Duration)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Delete releases a key whose request did not complete successfully.
	Delete(ctx context.Context, key string) error
}

type nopMetrics struct{}

func (nopMetrics) ObserveIssuance(domain.Category, time.Duration)     {}
func (nopMetrics) IncSubmitRetries(int)                               {}
func (nopMetrics) ObserveBalanceQuery(domain.Category, time.Duration) {}
