package dto

import (
	"bytes"
	"encoding/json"

	"github.com/iho/axiompay/internal/domain"
	"github.com/iho/axiompay/internal/usecase"
)

// CreateSubscriptionRequest is the body of POST /api/subscribe.
// userAccountId and amountHbar are accepted as aliases for older wallet
// front ends.
type CreateSubscriptionRequest struct {
	PayerAccountID string          `json:"payerAccountId"`
	UserAccountID  string          `json:"userAccountId,omitempty"`
	AmountUnits    json.RawMessage `json:"amountUnits,omitempty"`
	AmountHbar     json.RawMessage `json:"amountHbar,omitempty"`
	Frequency      string          `json:"frequency,omitempty"`
}

// ToUseCaseInput converts to use case input. amountUnits must be a JSON
// number; its literal text is passed through untouched so no precision is
// lost to float64.
func (r *CreateSubscriptionRequest) ToUseCaseInput() (usecase.CreateSubscriptionInput, error) {
	payer := r.PayerAccountID
	if payer == "" {
		payer = r.UserAccountID
	}

	raw := r.AmountUnits
	if isAbsent(raw) {
		raw = r.AmountHbar
	}

	amount, err := numberLiteral(raw)
	if err != nil {
		return usecase.CreateSubscriptionInput{}, err
	}

	return usecase.CreateSubscriptionInput{
		PayerAccountID: payer,
		Amount:         amount,
		Frequency:      r.Frequency,
	}, nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// numberLiteral returns the text of a JSON number, or "" when absent.
func numberLiteral(raw json.RawMessage) (string, error) {
	if isAbsent(raw) {
		return "", nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return "", domain.Invalid(domain.FieldAmount, "must be a number")
	}

	n, ok := v.(json.Number)
	if !ok {
		return "", domain.Invalid(domain.FieldAmount, "must be a number")
	}

	return n.String(), nil
}
