package domain

import (
	"errors"
	"fmt"
)

// Category is the stable error vocabulary exposed to callers.
type Category string

const (
	CategoryInvalidRequest          Category = "invalid_request"
	CategoryLedgerRejected          Category = "ledger_rejected"
	CategoryTransientNetworkFailure Category = "transient_network_failure"
	CategoryConfiguration           Category = "configuration_error"
	CategoryInternal                Category = "internal_error"
)

var (
	// Category sentinels
	ErrInvalidRequest   = errors.New("invalid request")
	ErrLedgerRejected   = errors.New("ledger rejected request")
	ErrTransientNetwork = errors.New("transient ledger network failure")
	ErrConfiguration    = errors.New("configuration error")
	ErrInternal         = errors.New("internal error")

	// Validation errors
	ErrInvalidAccountRef = errors.New("account id must match shard.realm.num")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrAmountNotNumeric  = errors.New("amount must be a number")
	ErrAmountPrecision   = errors.New("amount exceeds tinybar precision")
	ErrAmountTooLarge    = errors.New("amount exceeds maximum allowed")
	ErrSameAccount       = errors.New("payer cannot be the business account")
	ErrMemoTooLong       = errors.New("schedule memo too long")
)

func (c Category) sentinel() error {
	switch c {
	case CategoryInvalidRequest:
		return ErrInvalidRequest
	case CategoryLedgerRejected:
		return ErrLedgerRejected
	case CategoryTransientNetworkFailure:
		return ErrTransientNetwork
	case CategoryConfiguration:
		return ErrConfiguration
	default:
		return ErrInternal
	}
}

// ValidationError reports a malformed request field. It matches ErrInvalidRequest.
type ValidationError struct {
	Field  string
	Reason string
}

// Invalid returns a ValidationError for field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRequest
}

// LedgerError is a failure reported by the ledger client adapter. Code is the
// ledger status name when one exists; Category is assigned by the adapter.
type LedgerError struct {
	Code          string
	Category      Category
	TransactionID string
	Err           error
}

func (e *LedgerError) Error() string {
	msg := string(e.Category)
	if e.Code != "" {
		msg += " (" + e.Code + ")"
	}
	if e.TransactionID != "" {
		msg += " tx " + e.TransactionID
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

func (e *LedgerError) Is(target error) bool {
	return target == e.Category.sentinel()
}

// CategoryOf resolves the category of any error. Nil yields "".
func CategoryOf(err error) Category {
	if err == nil {
		return ""
	}

	var ledgerErr *LedgerError
	if errors.As(err, &ledgerErr) {
		return ledgerErr.Category
	}

	switch {
	case errors.Is(err, ErrInvalidRequest):
		return CategoryInvalidRequest
	case errors.Is(err, ErrConfiguration):
		return CategoryConfiguration
	case errors.Is(err, ErrLedgerRejected):
		return CategoryLedgerRejected
	case errors.Is(err, ErrTransientNetwork):
		return CategoryTransientNetworkFailure
	default:
		return CategoryInternal
	}
}

// IsTransient reports whether err may succeed if the same envelope is resubmitted.
func IsTransient(err error) bool {
	return CategoryOf(err) == CategoryTransientNetworkFailure
}
