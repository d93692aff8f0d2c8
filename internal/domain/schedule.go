package domain

import (
	"fmt"
	"strings"
	"time"
)

// MaxMemoBytes is the ledger's limit on schedule memo length.
const MaxMemoBytes = 100

// ScheduleRequest is a transfer instruction to be wrapped in a ledger
// schedule. It is always submitted under the operator identity.
type ScheduleRequest struct {
	Transfer TransferInstruction
	Memo     string
}

// NewScheduleRequest pairs an instruction with its memo.
func NewScheduleRequest(transfer TransferInstruction, memo string) (*ScheduleRequest, error) {
	if len(memo) > MaxMemoBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrMemoTooLong, len(memo), MaxMemoBytes)
	}

	return &ScheduleRequest{Transfer: transfer, Memo: memo}, nil
}

// SubscriptionMemo renders the memo attached to every subscription schedule.
func SubscriptionMemo(product string, amount Amount) string {
	return fmt.Sprintf("%s subscription: %s %s", product, amount, NativeUnit)
}

// Receipt is the ledger's confirmation of a submitted schedule creation.
type Receipt struct {
	ScheduleID    string
	TransactionID string
	Status        string
}

// ScheduleResult is the durable reference returned to callers.
type ScheduleResult struct {
	ScheduleID    string
	TransactionID string
	ExplorerURL   string
}

// Network names a ledger environment.
type Network string

const (
	NetworkMainnet    Network = "mainnet"
	NetworkTestnet    Network = "testnet"
	NetworkPreviewnet Network = "previewnet"
)

// ParseNetwork validates a network name.
func ParseNetwork(s string) (Network, error) {
	switch n := Network(strings.ToLower(strings.TrimSpace(s))); n {
	case NetworkMainnet, NetworkTestnet, NetworkPreviewnet:
		return n, nil
	default:
		return "", fmt.Errorf("%w: unknown ledger network %q", ErrConfiguration, s)
	}
}

// Explorer builds links into the public ledger explorer.
type Explorer struct {
	BaseURL string
	Network Network
}

// NetworkURL returns the explorer root for the configured network.
func (e Explorer) NetworkURL() string {
	return strings.TrimRight(e.BaseURL, "/") + "/" + string(e.Network)
}

// ScheduleURL returns the explorer page for a schedule.
func (e Explorer) ScheduleURL(scheduleID string) string {
	return e.NetworkURL() + "/schedule/" + scheduleID
}

// Frequency is free-form recurrence metadata. It is recorded, never acted upon.
type Frequency string

const (
	FrequencyOneTime Frequency = "one-time"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"

	// MaxFrequencyLength bounds the free-form value.
	MaxFrequencyLength = 32
)

// Subscription is what CreateSubscription hands back: the ledger reference
// plus the request metadata.
type Subscription struct {
	ID        string
	Payer     AccountRef
	Payee     AccountRef
	Amount    Amount
	Frequency Frequency
	Result    ScheduleResult
	CreatedAt time.Time
}
