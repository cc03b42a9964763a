package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a ledger transaction.
type Kind string

const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
)

// TokenClass identifies one of the three independent balance pools
// tracked per user.
type TokenClass string

const (
	TokenRegular TokenClass = "regular"
	TokenBinary  TokenClass = "binary"
	TokenWon     TokenClass = "won"
)

// DefaultMethod is the placeholder used when a source record carries no
// usable payment method descriptor.
const DefaultMethod = "Bank"

// Transaction is the normalized unit the ledger operates on. Every raw
// source record (purchase order, binary-token withdrawal, won-token
// withdrawal) is converted into this shape before merging.
type Transaction struct {
	// ID is unique within its source collection only. Collisions across
	// sources are possible and harmless.
	ID         string
	Kind       Kind
	TokenClass TokenClass
	Timestamp  time.Time

	// AmountRequested is the non-negative quantity the user asked for.
	AmountRequested decimal.Decimal

	// AmountCredited is the signed quantity applied to the balance:
	// positive for deposits, negative for withdrawals.
	AmountCredited decimal.Decimal

	// FinalAmount is the net amount after tax. Withdrawals only.
	FinalAmount *decimal.Decimal

	// Tax and TaxRate are informational and never enter balance math.
	Tax     decimal.Decimal
	TaxRate decimal.Decimal

	Status Status

	// BalanceAfter is the running balance of this transaction's token
	// class immediately after it is applied. Nil unless the transaction
	// is approved: pending and rejected transactions never mutate the
	// running balance.
	BalanceAfter *decimal.Decimal

	Method string
}

// Approved reports whether the transaction counts toward running balances.
func (t *Transaction) Approved() bool {
	return t.Status == StatusApproved
}

// Summary aggregates a ledger for display headers and reports.
type Summary struct {
	Total    int
	Approved int
	Rejected int
	Pending  int

	// Balances holds the closing running balance per token class.
	Balances map[TokenClass]decimal.Decimal
}
