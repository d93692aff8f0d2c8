package domain

import "fmt"

// Secret holds credential material. Its String and JSON forms are redacted so
// it cannot leak through logs or responses.
type Secret struct {
	value string
}

// NewSecret wraps s.
func NewSecret(s string) Secret {
	return Secret{value: s}
}

// Reveal returns the raw value. Only the ledger adapter should call it.
func (s Secret) Reveal() string {
	return s.value
}

// IsEmpty reports whether no value is set.
func (s Secret) IsEmpty() bool {
	return s.value == ""
}

func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString keeps %#v from printing the value.
func (s Secret) GoString() string {
	return "domain.Secret{[REDACTED]}"
}

// MarshalJSON always emits the redacted placeholder.
func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"[REDACTED]"`), nil
}

// OperatorIdentity is the platform identity that pays fees and signs schedule
// creation, plus the business account that receives every payment. It is
// built once at startup and never mutated.
type OperatorIdentity struct {
	AccountID       AccountRef
	PrivateKey      Secret
	BusinessAccount AccountRef
	Network         Network
}

// Validate checks that every field required to talk to the ledger is present.
func (o OperatorIdentity) Validate() error {
	switch {
	case o.AccountID.IsZero():
		return fmt.Errorf("%w: operator account id is required", ErrConfiguration)
	case o.PrivateKey.IsEmpty():
		return fmt.Errorf("%w: operator private key is required", ErrConfiguration)
	case o.BusinessAccount.IsZero():
		return fmt.Errorf("%w: business account id is required", ErrConfiguration)
	case o.Network == "":
		return fmt.Errorf("%w: ledger network is required", ErrConfiguration)
	}

	return nil
}
