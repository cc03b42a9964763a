package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Ledger is the unified, newest-first sequence of normalized transactions
// derived from all source collections. Callers treat it as a value: every
// operation returns a fresh slice.
type Ledger []Transaction

// BuildLedger merges normalized transactions into a ledger. Running
// balances are accumulated per token class in ascending timestamp order
// (balance-after depends on accumulation, not display order), then the
// result is presented newest first. Timestamp ties keep their original
// insertion order in both passes, so the merge is deterministic and
// idempotent for a given input.
func BuildLedger(txs []Transaction) Ledger {
	ledger := make(Ledger, len(txs))
	copy(ledger, txs)

	// Walk forward in chronological order, annotating each approved
	// transaction with the balance of its class after application.
	order := make([]int, len(ledger))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return ledger[order[i]].Timestamp.Before(ledger[order[j]].Timestamp)
	})

	balances := make(map[TokenClass]decimal.Decimal, 3)
	for _, idx := range order {
		tx := &ledger[idx]
		if !tx.Approved() {
			tx.BalanceAfter = nil
			continue
		}
		balance := balances[tx.TokenClass].Add(tx.AmountCredited)
		balances[tx.TokenClass] = balance
		after := balance
		tx.BalanceAfter = &after
	}

	sort.SliceStable(ledger, func(i, j int) bool {
		return ledger[i].Timestamp.After(ledger[j].Timestamp)
	})

	return ledger
}

// Filter restricts a ledger by kind and calendar date range. An empty
// Kind passes everything through. Date bounds are inclusive whole days:
// From is floored to 00:00:00 and To is ceiled to 23:59:59.999999999 of
// that day in local time, so a single-day range returns every
// transaction of that calendar day regardless of time-of-day.
type Filter struct {
	Kind Kind
	From *time.Time
	To   *time.Time
}

// Matches reports whether a transaction passes the filter.
func (f Filter) Matches(tx *Transaction) bool {
	if f.Kind != "" && tx.Kind != f.Kind {
		return false
	}
	if f.From != nil && tx.Timestamp.Before(DayStart(*f.From)) {
		return false
	}
	if f.To != nil && tx.Timestamp.After(DayEnd(*f.To)) {
		return false
	}
	return true
}

// Filter returns the transactions passing f, in ledger order. The source
// ledger is never mutated; an empty result is valid output.
func (l Ledger) Filter(f Filter) Ledger {
	out := make(Ledger, 0, len(l))
	for i := range l {
		if f.Matches(&l[i]) {
			out = append(out, l[i])
		}
	}
	return out
}

// Summarize computes display counts and the closing balance per token
// class. The ledger is newest-first, so the first annotated transaction
// seen for a class carries its closing balance.
func (l Ledger) Summarize() Summary {
	s := Summary{
		Total:    len(l),
		Balances: make(map[TokenClass]decimal.Decimal, 3),
	}

	for i := range l {
		switch l[i].Status {
		case StatusApproved:
			s.Approved++
		case StatusRejected:
			s.Rejected++
		default:
			s.Pending++
		}

		if l[i].BalanceAfter != nil {
			if _, seen := s.Balances[l[i].TokenClass]; !seen {
				s.Balances[l[i].TokenClass] = *l[i].BalanceAfter
			}
		}
	}

	return s
}

// DayStart returns midnight at the start of t's calendar day, local time.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayEnd returns the last instant of t's calendar day, local time.
func DayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
