package domain

import (
	"errors"
	"strings"
)

// Request field names as they appear on the wire.
const (
	FieldPayerAccountID = "payerAccountId"
	FieldAmount         = "amountUnits"
	FieldFrequency      = "frequency"
	FieldAccountID      = "accountId"
)

// SubscriptionRequest is a validated CreateSubscription request.
type SubscriptionRequest struct {
	Payer     AccountRef
	Amount    Amount
	Frequency Frequency
}

// ValidateSubscriptionRequest checks raw request fields before any ledger
// interaction. amount is the numeric literal exactly as received.
func ValidateSubscriptionRequest(payerAccountID, amount, frequency string, business AccountRef) (SubscriptionRequest, error) {
	if payerAccountID == "" {
		return SubscriptionRequest{}, Invalid(FieldPayerAccountID, "is required")
	}

	if amount == "" {
		return SubscriptionRequest{}, Invalid(FieldAmount, "is required")
	}

	payer, err := ValidateAccountID(FieldPayerAccountID, payerAccountID)
	if err != nil {
		return SubscriptionRequest{}, err
	}

	if payer == business {
		return SubscriptionRequest{}, Invalid(FieldPayerAccountID, ErrSameAccount.Error())
	}

	amt, err := ValidateAmount(amount)
	if err != nil {
		return SubscriptionRequest{}, err
	}

	freq, err := ValidateFrequency(frequency)
	if err != nil {
		return SubscriptionRequest{}, err
	}

	return SubscriptionRequest{Payer: payer, Amount: amt, Frequency: freq}, nil
}

// ValidateAccountID parses an account id, reporting failures against field.
func ValidateAccountID(field, s string) (AccountRef, error) {
	ref, err := ParseAccountRef(s)
	if err != nil {
		return AccountRef{}, Invalid(field, "must match shard.realm.num (e.g. 0.0.12345)")
	}
	return ref, nil
}

// ValidateAmount parses and bounds an HBAR amount.
func ValidateAmount(s string) (Amount, error) {
	amt, err := ParseAmount(s)
	switch {
	case err == nil:
		return amt, nil
	case errors.Is(err, ErrAmountNotNumeric):
		return Amount{}, Invalid(FieldAmount, "must be a number")
	case errors.Is(err, ErrInvalidAmount):
		return Amount{}, Invalid(FieldAmount, "must be a positive number")
	case errors.Is(err, ErrAmountPrecision):
		return Amount{}, Invalid(FieldAmount, "must have at most 8 decimal places")
	case errors.Is(err, ErrAmountTooLarge):
		return Amount{}, Invalid(FieldAmount, "exceeds the maximum of "+MaxAmountHbar+" "+NativeUnit)
	default:
		return Amount{}, Invalid(FieldAmount, "is invalid")
	}
}

// ValidateFrequency normalizes the recurrence label. Empty means one-time.
func ValidateFrequency(s string) (Frequency, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FrequencyOneTime, nil
	}

	if len(s) > MaxFrequencyLength {
		return "", Invalid(FieldFrequency, "is too long")
	}

	return Frequency(s), nil
}
