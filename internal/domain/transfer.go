package domain

import (
	"github.com/shopspring/decimal"
)

// TransferEntry is one leg of a transfer: a signed HBAR delta applied to an account.
type TransferEntry struct {
	Account AccountRef
	Delta   decimal.Decimal
}

// TransferInstruction is a balanced debit/credit pair. Entries[0] is always the
// payer debit and Entries[1] the payee credit.
type TransferInstruction struct {
	Entries [2]TransferEntry
}

// BuildTransfer builds the instruction moving amount from payer to payee.
// The credit is the exact negation of the debit, so the pair is zero-sum by
// construction. Inputs are expected to be validated by the caller.
func BuildTransfer(payer, payee AccountRef, amount Amount) TransferInstruction {
	debit := amount.Decimal().Neg()

	return TransferInstruction{
		Entries: [2]TransferEntry{
			{Account: payer, Delta: debit},
			{Account: payee, Delta: debit.Neg()},
		},
	}
}

// Payer returns the debited account.
func (t TransferInstruction) Payer() AccountRef {
	return t.Entries[0].Account
}

// Payee returns the credited account.
func (t TransferInstruction) Payee() AccountRef {
	return t.Entries[1].Account
}

// Sum returns the total of both deltas; zero for every well-formed instruction.
func (t TransferInstruction) Sum() decimal.Decimal {
	return t.Entries[0].Delta.Add(t.Entries[1].Delta)
}
