package dto

import (
	"encoding/json"
	"time"

	"github.com/iho/axiompay/internal/domain"
)

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// SubscriptionResponse is returned by POST /api/subscribe.
type SubscriptionResponse struct {
	Status         string      `json:"status"`
	Message        string      `json:"message"`
	SubscriptionID string      `json:"subscriptionId"`
	ScheduleID     string      `json:"scheduleId"`
	TransactionID  string      `json:"transactionId"`
	ExplorerURL    string      `json:"explorerUrl"`
	HashscanURL    string      `json:"hashscanUrl"` // legacy alias of explorerUrl
	Frequency      string      `json:"frequency"`
	PayerAccountID string      `json:"payerAccountId"`
	AmountUnits    json.Number `json:"amountUnits"`
	Unit           string      `json:"unit"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// SubscriptionFromDomain converts a domain subscription to response.
func SubscriptionFromDomain(s *domain.Subscription) *SubscriptionResponse {
	return &SubscriptionResponse{
		Status:         StatusSuccess,
		Message:        "Subscription created successfully",
		SubscriptionID: s.ID,
		ScheduleID:     s.Result.ScheduleID,
		TransactionID:  s.Result.TransactionID,
		ExplorerURL:    s.Result.ExplorerURL,
		HashscanURL:    s.Result.ExplorerURL,
		Frequency:      string(s.Frequency),
		PayerAccountID: s.Payer.String(),
		AmountUnits:    json.Number(s.Amount.String()),
		Unit:           domain.NativeUnit,
		CreatedAt:      s.CreatedAt,
	}
}

// BalanceResponse is returned by GET /api/balance/{accountId}.
type BalanceResponse struct {
	Status    string `json:"status"`
	AccountID string `json:"accountId"`
	Balance   string `json:"balance"`
	Unit      string `json:"unit"`
	Tinybars  int64  `json:"tinybars"`
}

// BalanceFromDomain converts a ledger balance to response.
func BalanceFromDomain(accountID string, b domain.Balance) *BalanceResponse {
	return &BalanceResponse{
		Status:    StatusSuccess,
		AccountID: accountID,
		Balance:   b.Hbar().String(),
		Unit:      domain.NativeUnit,
		Tinybars:  b.Tinybars,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Status        string `json:"status"`
	Category      string `json:"category,omitempty"`
	Message       string `json:"message"`
	Field         string `json:"field,omitempty"`
	Code          string `json:"code,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
}

// ErrorFromFailure converts a translated failure to response.
func ErrorFromFailure(f domain.Failure) *ErrorResponse {
	return &ErrorResponse{
		Status:        StatusError,
		Category:      string(f.Category),
		Message:       f.Message,
		Field:         f.Field,
		Code:          f.Code,
		TransactionID: f.TransactionID,
	}
}

// HealthResponse is returned by the liveness check.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
}

// ReadinessResponse is returned by the readiness check.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
