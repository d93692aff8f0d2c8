package domain

import (
	"errors"
	"fmt"
)

// Failure is the caller-facing form of an error. It never carries raw
// ledger payloads or credential material.
type Failure struct {
	Category      Category
	Message       string
	Field         string
	Code          string
	TransactionID string
}

var rejectionMessages = map[string]string{
	"INVALID_ACCOUNT_ID":                 "Invalid user account ID",
	"ACCOUNT_DELETED":                    "User account has been deleted",
	"INSUFFICIENT_ACCOUNT_BALANCE":       "Insufficient balance in user account",
	"INSUFFICIENT_PAYER_BALANCE":         "Platform account cannot cover network fees",
	"PAYER_ACCOUNT_NOT_FOUND":            "Platform account not found on the ledger",
	"INVALID_SIGNATURE":                  "Ledger rejected the platform signature",
	"IDENTICAL_SCHEDULE_ALREADY_CREATED": "An identical subscription schedule already exists",
	"MEMO_TOO_LONG":                      "Subscription memo is too long",
	"TRANSACTION_EXPIRED":                "Ledger request expired before it was accepted",
}

const (
	msgLedgerRejected = "The ledger rejected the subscription request"
	msgTransient      = "Ledger network is temporarily unavailable, please try again"
	msgConfiguration  = "Service is not configured"
	msgInternal       = "Internal server error"
)

// Translate maps err onto the stable caller vocabulary.
func Translate(err error) Failure {
	category := CategoryOf(err)

	f := Failure{Category: category}

	var ledgerErr *LedgerError
	if errors.As(err, &ledgerErr) {
		f.TransactionID = ledgerErr.TransactionID
	}

	switch category {
	case CategoryInvalidRequest:
		var ve *ValidationError
		if errors.As(err, &ve) {
			f.Field = ve.Field
			f.Message = fmt.Sprintf("%s %s", ve.Field, ve.Reason)
		} else {
			f.Message = "Invalid request"
		}
	case CategoryLedgerRejected:
		f.Message = msgLedgerRejected
		if ledgerErr != nil {
			f.Code = ledgerErr.Code
			if msg, ok := rejectionMessages[ledgerErr.Code]; ok {
				f.Message = msg
			}
		}
	case CategoryTransientNetworkFailure:
		f.Message = msgTransient
	case CategoryConfiguration:
		f.Message = msgConfiguration
	default:
		f.Category = CategoryInternal
		f.Message = msgInternal
	}

	return f
}
