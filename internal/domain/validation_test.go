package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidateUserKey(t *testing.T) {
	t.Parallel()

	t.Run("valid key", func(t *testing.T) {
		if err := ValidateUserKey("NPX_9198765432"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("empty key rejected", func(t *testing.T) {
		err := ValidateUserKey("   ")
		if !errors.Is(err, ErrInvalidUserKey) {
			t.Fatalf("expected ErrInvalidUserKey, got %v", err)
		}
	})

	t.Run("key too long", func(t *testing.T) {
		err := ValidateUserKey(strings.Repeat("a", MaxUserKeyLength+1))
		if !errors.Is(err, ErrInvalidUserKey) {
			t.Fatalf("expected ErrInvalidUserKey, got %v", err)
		}
	})

	t.Run("key with forbidden characters", func(t *testing.T) {
		err := ValidateUserKey("user'; DROP TABLE--")
		if !errors.Is(err, ErrInvalidUserKey) {
			t.Fatalf("expected ErrInvalidUserKey, got %v", err)
		}
	})
}

func TestValidatePayoutAmount(t *testing.T) {
	t.Parallel()

	if err := ValidatePayoutAmount(dec("100")); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if err := ValidatePayoutAmount(dec("0")); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount for zero, got %v", err)
	}
	if err := ValidatePayoutAmount(dec("-5")); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount for negative, got %v", err)
	}
	if err := ValidatePayoutAmount(dec("10000001")); !errors.Is(err, ErrAmountTooLarge) {
		t.Errorf("expected ErrAmountTooLarge, got %v", err)
	}
}

func TestValidateDateRange(t *testing.T) {
	t.Parallel()

	from := time.Date(2024, 3, 10, 15, 0, 0, 0, time.Local)
	to := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)

	if err := ValidateDateRange(&from, &to); !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("expected ErrInvalidDateRange, got %v", err)
	}
	if err := ValidateDateRange(&to, &from); err != nil {
		t.Errorf("expected no error for ordered range, got %v", err)
	}
	if err := ValidateDateRange(nil, &to); err != nil {
		t.Errorf("open-ended range must be valid, got %v", err)
	}

	// Same calendar day is a valid range even if from carries a later
	// time-of-day than midnight.
	sameDay := time.Date(2024, 3, 10, 23, 0, 0, 0, time.Local)
	earlier := time.Date(2024, 3, 10, 1, 0, 0, 0, time.Local)
	if err := ValidateDateRange(&sameDay, &earlier); err != nil {
		t.Errorf("same-day range must be valid, got %v", err)
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	if err := ValidateEmail("ops@naphex.com"); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if err := ValidateEmail("not-an-email"); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	if err := ValidatePassword("Sup3rSecret"); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if err := ValidatePassword("short1A"); !errors.Is(err, ErrPasswordTooWeak) {
		t.Errorf("expected ErrPasswordTooWeak, got %v", err)
	}
	if err := ValidatePassword("alllowercase1"); !errors.Is(err, ErrPasswordTooWeak) {
		t.Errorf("expected ErrPasswordTooWeak, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	limit, offset, _ := ValidatePagination(0, -5)
	if limit != DefaultPageSize || offset != 0 {
		t.Errorf("expected defaults, got %d/%d", limit, offset)
	}

	limit, _, _ = ValidatePagination(9999, 0)
	if limit != 500 {
		t.Errorf("expected cap at 500, got %d", limit)
	}
}
