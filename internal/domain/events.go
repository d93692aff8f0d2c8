package domain

import "time"

// Event types
const (
	EventTypeSubscriptionScheduled = "subscription.scheduled"
)

// SubscriptionScheduledEvent is emitted after the ledger confirms a schedule.
type SubscriptionScheduledEvent struct {
	SubscriptionID string    `json:"subscription_id"`
	PayerAccountID string    `json:"payer_account_id"`
	PayeeAccountID string    `json:"payee_account_id"`
	Amount         string    `json:"amount"`
	Unit           string    `json:"unit"`
	Frequency      string    `json:"frequency"`
	ScheduleID     string    `json:"schedule_id"`
	TransactionID  string    `json:"transaction_id"`
	ExplorerURL    string    `json:"explorer_url"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// NewSubscriptionScheduledEvent builds the event payload for s.
func NewSubscriptionScheduledEvent(s *Subscription) SubscriptionScheduledEvent {
	return SubscriptionScheduledEvent{
		SubscriptionID: s.ID,
		PayerAccountID: s.Payer.String(),
		PayeeAccountID: s.Payee.String(),
		Amount:         s.Amount.String(),
		Unit:           NativeUnit,
		Frequency:      string(s.Frequency),
		ScheduleID:     s.Result.ScheduleID,
		TransactionID:  s.Result.TransactionID,
		ExplorerURL:    s.Result.ExplorerURL,
		OccurredAt:     s.CreatedAt,
	}
}
