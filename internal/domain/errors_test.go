package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Category
	}{
		{"nil", nil, ""},
		{"validation", Invalid(FieldAmount, "must be positive"), CategoryInvalidRequest},
		{"wrapped validation", fmt.Errorf("create: %w", Invalid(FieldAmount, "bad")), CategoryInvalidRequest},
		{"ledger rejection", &LedgerError{Code: "INVALID_ACCOUNT_ID", Category: CategoryLedgerRejected}, CategoryLedgerRejected},
		{"ledger transient", &LedgerError{Category: CategoryTransientNetworkFailure, Err: context.DeadlineExceeded}, CategoryTransientNetworkFailure},
		{"configuration", fmt.Errorf("%w: missing key", ErrConfiguration), CategoryConfiguration},
		{"unknown", errors.New("boom"), CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CategoryOf(tt.err); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestLedgerError_IsAndUnwrap(t *testing.T) {
	err := fmt.Errorf("submit: %w", &LedgerError{
		Category: CategoryTransientNetworkFailure,
		Err:      context.DeadlineExceeded,
	})

	if !errors.Is(err, ErrTransientNetwork) {
		t.Error("expected ledger error to match its category sentinel")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected ledger error to unwrap to the cause")
	}
	if errors.Is(err, ErrLedgerRejected) {
		t.Error("transient error must not match ErrLedgerRejected")
	}
	if !IsTransient(err) {
		t.Error("expected IsTransient")
	}
}

func TestTranslate(t *testing.T) {
	t.Run("validation keeps field", func(t *testing.T) {
		f := Translate(Invalid(FieldPayerAccountID, "is required"))
		if f.Category != CategoryInvalidRequest || f.Field != FieldPayerAccountID {
			t.Fatalf("unexpected failure %+v", f)
		}
		if f.Message != "payerAccountId is required" {
			t.Errorf("unexpected message %q", f.Message)
		}
	})

	t.Run("known rejection code", func(t *testing.T) {
		f := Translate(&LedgerError{Code: "INSUFFICIENT_ACCOUNT_BALANCE", Category: CategoryLedgerRejected, TransactionID: "0.0.2@1.2"})
		if f.Message != "Insufficient balance in user account" {
			t.Errorf("unexpected message %q", f.Message)
		}
		if f.Code != "INSUFFICIENT_ACCOUNT_BALANCE" || f.TransactionID != "0.0.2@1.2" {
			t.Errorf("unexpected failure %+v", f)
		}
	})

	t.Run("unknown rejection code", func(t *testing.T) {
		f := Translate(&LedgerError{Code: "SOMETHING_NEW", Category: CategoryLedgerRejected})
		if f.Message != msgLedgerRejected {
			t.Errorf("unexpected message %q", f.Message)
		}
	})

	t.Run("internal is opaque", func(t *testing.T) {
		f := Translate(errors.New("private key 302e... rejected by node 0.0.3"))
		if f.Category != CategoryInternal || f.Message != msgInternal {
			t.Fatalf("unexpected failure %+v", f)
		}
	})

	t.Run("rejection differs from internal", func(t *testing.T) {
		rejected := Translate(&LedgerError{Code: "INSUFFICIENT_ACCOUNT_BALANCE", Category: CategoryLedgerRejected})
		internal := Translate(errors.New("boom"))
		if rejected.Message == internal.Message {
			t.Fatal("expected distinct messages")
		}
	})
}
