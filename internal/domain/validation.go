package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidUserKey   = errors.New("invalid user key")
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrAmountTooLarge   = errors.New("amount exceeds maximum allowed")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrPasswordTooWeak  = errors.New("password does not meet requirements")
)

// Validation constants
const (
	MaxUserKeyLength  = 64
	MaxPayoutTokens   = "10000000" // 10 million tokens per request
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

// User keys are the phone-number-derived identifiers the platform
// assigns at signup.
var userKeyRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateUserKey validates an opaque user key before it is used to
// request a snapshot or key a cache entry.
func ValidateUserKey(key string) error {
	key = strings.TrimSpace(key)

	if key == "" {
		return fmt.Errorf("%w: key cannot be empty", ErrInvalidUserKey)
	}

	if len(key) > MaxUserKeyLength {
		return fmt.Errorf("%w: key exceeds %d characters", ErrInvalidUserKey, MaxUserKeyLength)
	}

	if !userKeyRegex.MatchString(key) {
		return fmt.Errorf("%w: contains forbidden characters", ErrInvalidUserKey)
	}

	return nil
}

// ValidatePayoutAmount validates a requested withdrawal amount.
func ValidatePayoutAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxPayoutTokens)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum is %s tokens", ErrAmountTooLarge, MaxPayoutTokens)
	}

	return nil
}

// ValidateDateRange checks that a from/to pair is ordered. Nil bounds
// are open ends and always valid.
func ValidateDateRange(from, to *time.Time) error {
	if from == nil || to == nil {
		return nil
	}
	if DayStart(*from).After(DayEnd(*to)) {
		return fmt.Errorf("%w: from is after to", ErrInvalidDateRange)
	}
	return nil
}

// ValidateEmail validates email format
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}

	return nil
}

// ValidatePassword validates password strength
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrPasswordTooWeak, MinPasswordLength)
	}

	if len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: must not exceed %d characters", ErrPasswordTooWeak, MaxPasswordLength)
	}

	hasUpper := regexp.MustCompile(`[A-Z]`).MatchString(password)
	hasLower := regexp.MustCompile(`[a-z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)

	if !hasUpper || !hasLower || !hasNumber {
		return fmt.Errorf("%w: must contain uppercase, lowercase, and numbers", ErrPasswordTooWeak)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 500

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
