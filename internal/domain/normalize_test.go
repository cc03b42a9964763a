package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func et(s string) EventTime {
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return EventTime{Time: parsed}
}

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func TestNormalizeOrders(t *testing.T) {
	orders := map[string]OrderRecord{
		"o1": {
			ID:             "o1",
			Type:           "deposit",
			AmountPaid:     Amount{dec("500")},
			CreditedTokens: Amount{dec("450")},
			ProcessedAt:    et("2024-03-01T10:00:00Z"),
			Status:         "paid",
		},
	}

	txs := NormalizeOrders(orders, testNow)

	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}

	tx := txs[0]
	if tx.Kind != KindDeposit {
		t.Errorf("expected deposit, got %s", tx.Kind)
	}
	if tx.TokenClass != TokenRegular {
		t.Errorf("expected regular class, got %s", tx.TokenClass)
	}
	if !tx.AmountRequested.Equal(dec("500")) {
		t.Errorf("expected requested 500, got %s", tx.AmountRequested)
	}
	if !tx.AmountCredited.Equal(dec("450")) {
		t.Errorf("expected credited +450, got %s", tx.AmountCredited)
	}
	if tx.Status != StatusApproved {
		t.Errorf("expected approved, got %s", tx.Status)
	}
	if tx.Method != DefaultMethod {
		t.Errorf("expected default method, got %q", tx.Method)
	}
}

func TestNormalizeOrders_Defaults(t *testing.T) {
	t.Run("nil collection", func(t *testing.T) {
		if txs := NormalizeOrders(nil, testNow); len(txs) != 0 {
			t.Fatalf("expected empty slice, got %d", len(txs))
		}
	})

	t.Run("missing fields default to zero and now", func(t *testing.T) {
		txs := NormalizeOrders(map[string]OrderRecord{"o9": {}}, testNow)
		if len(txs) != 1 {
			t.Fatalf("expected 1 transaction, got %d", len(txs))
		}
		tx := txs[0]
		if tx.ID != "o9" {
			t.Errorf("expected map key as id fallback, got %q", tx.ID)
		}
		if !tx.AmountCredited.IsZero() || !tx.AmountRequested.IsZero() {
			t.Errorf("expected zero amounts, got %s/%s", tx.AmountRequested, tx.AmountCredited)
		}
		if !tx.Timestamp.Equal(testNow) {
			t.Errorf("expected now fallback, got %v", tx.Timestamp)
		}
		if tx.Status != StatusPending {
			t.Errorf("expected pending for absent status, got %s", tx.Status)
		}
	})
}

func TestNormalizeWithdrawals(t *testing.T) {
	withdrawals := map[string]WithdrawalRecord{
		"w1": {
			ID:              "w1",
			RequestedTokens: Amount{dec("100")},
			CreatedAt:       et("2024-03-02T09:00:00Z"),
			Status:          "pending",
			Tax:             Amount{dec("23")},
			TaxPercentage:   Amount{dec("23")},
			FinalTokens:     Amount{dec("77")},
			Method:          MethodField{Label: "HDFC Bank"},
		},
	}

	txs := NormalizeWithdrawals(withdrawals, TokenBinary, testNow)

	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}

	tx := txs[0]
	if tx.Kind != KindWithdrawal {
		t.Errorf("expected withdrawal, got %s", tx.Kind)
	}
	if tx.TokenClass != TokenBinary {
		t.Errorf("expected binary class, got %s", tx.TokenClass)
	}
	if !tx.AmountCredited.Equal(dec("-100")) {
		t.Errorf("expected credited -100, got %s", tx.AmountCredited)
	}
	if tx.FinalAmount == nil || !tx.FinalAmount.Equal(dec("77")) {
		t.Errorf("expected final amount 77, got %v", tx.FinalAmount)
	}
	if tx.Status != StatusPending {
		t.Errorf("expected pending, got %s", tx.Status)
	}
	if tx.Method != "HDFC Bank" {
		t.Errorf("expected method label, got %q", tx.Method)
	}
}

func TestNormalizeWithdrawals_EmptyMethodGetsPlaceholder(t *testing.T) {
	// Upstream sometimes ships method as an object with no usable field;
	// the label must be the fixed placeholder, never "undefined" text.
	txs := NormalizeWithdrawals(map[string]WithdrawalRecord{
		"w1": {ID: "w1", RequestedTokens: Amount{dec("50")}, Status: "approved"},
	}, TokenWon, testNow)

	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
	if txs[0].Method != DefaultMethod {
		t.Errorf("expected %q, got %q", DefaultMethod, txs[0].Method)
	}
	if strings.Contains(txs[0].Method, "undefined") {
		t.Errorf("method leaked undefined text: %q", txs[0].Method)
	}
}

func TestNormalizeSnapshot_ConcatenatesAllSources(t *testing.T) {
	snap := &Snapshot{
		Orders: map[string]OrderRecord{
			"o1": {ID: "o1", CreditedTokens: Amount{dec("10")}, Status: "paid"},
		},
		Withdrawals: map[string]WithdrawalRecord{
			"w1": {ID: "w1", RequestedTokens: Amount{dec("5")}, Status: "approved"},
		},
		WonWithdrawals: map[string]WithdrawalRecord{
			"w1": {ID: "w1", RequestedTokens: Amount{dec("3")}, Status: "pending"},
		},
	}

	txs := NormalizeSnapshot(snap, testNow)

	// Colliding ids across sources must coexist.
	if len(txs) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(txs))
	}

	classes := map[TokenClass]int{}
	for _, tx := range txs {
		classes[tx.TokenClass]++
	}
	if classes[TokenRegular] != 1 || classes[TokenBinary] != 1 || classes[TokenWon] != 1 {
		t.Errorf("unexpected class distribution: %v", classes)
	}
}

func TestNormalize_DeterministicOrder(t *testing.T) {
	orders := map[string]OrderRecord{
		"b": {ID: "b"}, "a": {ID: "a"}, "c": {ID: "c"},
	}

	first := NormalizeOrders(orders, testNow)
	second := NormalizeOrders(orders, testNow)

	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("normalization order not deterministic: %s vs %s", first[i].ID, second[i].ID)
		}
	}
}
