package dto

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/naphex/ledger/internal/domain"
)

// LoginRequest represents a console login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate validates the login request.
func (r *LoginRequest) Validate() error {
	if r.Email == "" {
		return errors.New("email is required")
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

// CreateWithdrawalRequest represents a payout filing request.
type CreateWithdrawalRequest struct {
	UserKey         string          `json:"user_key"`
	TokenClass      string          `json:"token_class"`
	RequestedTokens decimal.Decimal `json:"requested_tokens"`
	Method          string          `json:"method,omitempty"`
}

// Validate validates the withdrawal request.
func (r *CreateWithdrawalRequest) Validate() error {
	if r.UserKey == "" {
		return errors.New("user_key is required")
	}
	if r.TokenClass == "" {
		return errors.New("token_class is required")
	}
	if r.RequestedTokens.IsZero() || r.RequestedTokens.IsNegative() {
		return errors.New("requested_tokens must be positive")
	}
	return nil
}

// LedgerQuery carries the parsed filter and paging parameters of a
// ledger read.
type LedgerQuery struct {
	Filter domain.Filter
	Limit  int
	Offset int
}

// ParseKind parses a transaction-kind query value. An empty value means
// no filtering; anything unrecognized is rejected rather than silently
// returning an unfiltered ledger.
func ParseKind(value string) (domain.Kind, error) {
	switch value {
	case "":
		return "", nil
	case string(domain.KindDeposit):
		return domain.KindDeposit, nil
	case string(domain.KindWithdrawal):
		return domain.KindWithdrawal, nil
	default:
		return "", errors.New("type must be deposit or withdrawal")
	}
}

// ParseDate parses a calendar-day query value.
func ParseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, errors.New("dates must be YYYY-MM-DD")
	}
	return &t, nil
}
