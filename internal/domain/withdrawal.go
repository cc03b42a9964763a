package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalRequest is a payout request held in the admin store while it
// waits for a decision. Once approved or rejected it is immutable; the
// user's ledger picks the decision up on the next snapshot rebuild.
type WithdrawalRequest struct {
	ID              string
	UserKey         string
	TokenClass      TokenClass
	RequestedTokens decimal.Decimal
	Tax             decimal.Decimal
	TaxRate         decimal.Decimal
	FinalTokens     decimal.Decimal
	Method          string
	Status          Status
	DecidedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Decided reports whether the request has reached a terminal state.
func (w *WithdrawalRequest) Decided() bool {
	return w.Status == StatusApproved || w.Status == StatusRejected
}

// NewWithdrawalRequest builds a pending request, deriving tax and the
// net payout from the platform's configured rate (a percentage).
func NewWithdrawalRequest(id, userKey string, class TokenClass, requested, taxRate decimal.Decimal, method string, now time.Time) (*WithdrawalRequest, error) {
	if requested.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if class != TokenBinary && class != TokenWon {
		return nil, ErrInvalidTokenClass
	}

	if method == "" {
		method = DefaultMethod
	}

	tax := requested.Mul(taxRate).Div(decimal.NewFromInt(100)).Round(2)

	return &WithdrawalRequest{
		ID:              id,
		UserKey:         userKey,
		TokenClass:      class,
		RequestedTokens: requested,
		Tax:             tax,
		TaxRate:         taxRate,
		FinalTokens:     requested.Sub(tax),
		Method:          method,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}
