package domain

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func TestBuildTransfer(t *testing.T) {
	business := MustParseAccountRef("0.0.5005")

	tests := []struct {
		name   string
		payer  string
		amount string
	}{
		{name: "whole amount", payer: "0.0.1001", amount: "10"},
		{name: "fractional amount", payer: "0.0.1001", amount: "5.5"},
		{name: "smallest unit", payer: "0.0.42", amount: "0.00000001"},
		{name: "large amount", payer: "1.2.3", amount: "49999999999.99999999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payer := MustParseAccountRef(tt.payer)
			amount := MustParseAmount(tt.amount)

			instr := BuildTransfer(payer, business, amount)

			if !instr.Sum().IsZero() {
				t.Fatalf("expected zero-sum instruction, got sum %s", instr.Sum())
			}
			if instr.Payer() != payer {
				t.Errorf("expected payer %s, got %s", payer, instr.Payer())
			}
			if instr.Payee() != business {
				t.Errorf("expected payee %s, got %s", business, instr.Payee())
			}
			if !instr.Entries[0].Delta.Equal(amount.Decimal().Neg()) {
				t.Errorf("expected debit %s, got %s", amount.Decimal().Neg(), instr.Entries[0].Delta)
			}
			if !instr.Entries[1].Delta.Equal(amount.Decimal()) {
				t.Errorf("expected credit %s, got %s", amount.Decimal(), instr.Entries[1].Delta)
			}
		})
	}
}

func TestBuildTransfer_Deterministic(t *testing.T) {
	payer := MustParseAccountRef("0.0.1001")
	payee := MustParseAccountRef("0.0.5005")
	amount := MustParseAmount("5.5")

	first := BuildTransfer(payer, payee, amount)
	second := BuildTransfer(payer, payee, amount)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical instructions, got %+v and %+v", first, second)
	}

	// Instructions are values: changing one must not affect the other.
	second.Entries[0].Delta = decimal.NewFromInt(-1)
	if first.Entries[0].Delta.Equal(second.Entries[0].Delta) {
		t.Fatal("instructions share state")
	}
}
