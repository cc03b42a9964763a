package domain

import (
	"sort"
	"time"
)

// NormalizeOrders converts raw purchase orders into deposit transactions
// in the regular token class. Pure mapping: a nil or empty collection
// yields an empty slice, never an error. Records with no usable
// timestamp get now.
func NormalizeOrders(orders map[string]OrderRecord, now time.Time) []Transaction {
	txs := make([]Transaction, 0, len(orders))

	for _, key := range sortedKeys(orders) {
		rec := orders[key]

		txs = append(txs, Transaction{
			ID:              recordID(rec.ID, key),
			Kind:            KindDeposit,
			TokenClass:      TokenRegular,
			Timestamp:       timestampOr(rec.ProcessedAt, now),
			AmountRequested: rec.AmountPaid.Decimal,
			AmountCredited:  rec.CreditedTokens.Decimal,
			Status:          ParseStatus(rec.Status),
			Method:          DefaultMethod,
		})
	}

	return txs
}

// NormalizeWithdrawals converts raw withdrawal requests into withdrawal
// transactions of the given token class. AmountCredited is negative so
// the merger can apply one signed balance rule for both kinds.
func NormalizeWithdrawals(withdrawals map[string]WithdrawalRecord, class TokenClass, now time.Time) []Transaction {
	txs := make([]Transaction, 0, len(withdrawals))

	for _, key := range sortedKeys(withdrawals) {
		rec := withdrawals[key]

		final := rec.FinalTokens.Decimal
		method := rec.Method.Label
		if method == "" {
			method = DefaultMethod
		}

		txs = append(txs, Transaction{
			ID:              recordID(rec.ID, key),
			Kind:            KindWithdrawal,
			TokenClass:      class,
			Timestamp:       timestampOr(rec.CreatedAt, now),
			AmountRequested: rec.RequestedTokens.Decimal,
			AmountCredited:  rec.RequestedTokens.Decimal.Neg(),
			FinalAmount:     &final,
			Tax:             rec.Tax.Decimal,
			TaxRate:         rec.TaxPercentage.Decimal,
			Status:          ParseStatus(rec.Status),
			Method:          method,
		})
	}

	return txs
}

// NormalizeSnapshot runs all three source collections through
// normalization and returns the concatenated, unmerged transactions.
func NormalizeSnapshot(snap *Snapshot, now time.Time) []Transaction {
	if snap == nil {
		return nil
	}

	txs := NormalizeOrders(snap.Orders, now)
	txs = append(txs, NormalizeWithdrawals(snap.Withdrawals, TokenBinary, now)...)
	txs = append(txs, NormalizeWithdrawals(snap.WonWithdrawals, TokenWon, now)...)
	return txs
}

// sortedKeys fixes the iteration order so normalization output does not
// depend on map ordering.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func recordID(id, fallback string) string {
	if id != "" {
		return id
	}
	return fallback
}

func timestampOr(t EventTime, now time.Time) time.Time {
	if t.IsZero() {
		return now
	}
	return t.Time
}
