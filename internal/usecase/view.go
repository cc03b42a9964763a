package usecase

import (
	"sync"

	"github.com/naphex/ledger/internal/domain"
)

// LedgerView is the stateful read model behind a live (stream-fed)
// transaction-history screen: the current full ledger, the active
// filter, and a growing visible window. Safe for concurrent use; the
// stream consumer replaces the ledger while the view layer pages
// through it.
type LedgerView struct {
	mu       sync.Mutex
	ledger   domain.Ledger
	filtered domain.Ledger
	filter   domain.Filter
	cursor   *domain.Cursor
}

// NewLedgerView creates a view with the given page size.
func NewLedgerView(pageSize int) *LedgerView {
	return &LedgerView{cursor: domain.NewCursor(pageSize)}
}

// Replace swaps in a newly rebuilt ledger. The active filter is
// re-applied and the visible window length is preserved (clamped to the
// new length) so an incoming snapshot does not yank the user back to
// the first page.
func (v *LedgerView) Replace(ledger domain.Ledger) {
	v.mu.Lock()
	defer v.mu.Unlock()

	visible := v.cursor.Visible()

	v.ledger = ledger
	v.filtered = ledger.Filter(v.filter)
	v.cursor.Bind(len(v.filtered))

	for v.cursor.Visible() < visible && v.cursor.HasMore() {
		v.cursor.Advance()
	}
}

// SetFilter activates a new filter. Changing the filter always restarts
// pagination from the first page, never from the previous position.
func (v *LedgerView) SetFilter(f domain.Filter) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.filter = f
	v.filtered = v.ledger.Filter(f)
	v.cursor.Bind(len(v.filtered))
}

// LoadMore extends the visible window by one page.
func (v *LedgerView) LoadMore() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cursor.Advance()
}

// Window returns the currently visible transactions.
func (v *LedgerView) Window() domain.Ledger {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cursor.Window(v.filtered)
}

// HasMore reports whether more transactions can be revealed.
func (v *LedgerView) HasMore() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cursor.HasMore()
}

// Summary aggregates the filtered ledger, not just the visible window.
func (v *LedgerView) Summary() domain.Summary {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filtered.Summarize()
}
