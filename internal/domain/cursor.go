package domain

// DefaultPageSize is the visible-window growth step used when a caller
// does not configure one.
const DefaultPageSize = 25

// Cursor exposes a growing visible window over a filtered ledger. It is
// deliberately dumb: it tracks window length against ledger length and
// nothing else, so rebinding it to a new ledger (or a new filter) always
// restarts from the first page.
type Cursor struct {
	pageSize int
	visible  int
	total    int
}

// NewCursor creates a cursor with the given page size.
func NewCursor(pageSize int) *Cursor {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Cursor{pageSize: pageSize}
}

// Bind points the cursor at a ledger of the given length and resets the
// window to the first page.
func (c *Cursor) Bind(total int) {
	c.total = total
	c.Reset()
}

// Reset shrinks the visible window back to the first page.
func (c *Cursor) Reset() {
	c.visible = min(c.pageSize, c.total)
}

// Advance extends the visible window by one page, capped at the ledger
// length.
func (c *Cursor) Advance() {
	c.visible = min(c.visible+c.pageSize, c.total)
}

// HasMore reports whether transactions remain beyond the visible window.
func (c *Cursor) HasMore() bool {
	return c.visible < c.total
}

// Visible returns the current window length.
func (c *Cursor) Visible() int {
	return c.visible
}

// Window slices the visible portion of the ledger the cursor was bound
// to. Passing a ledger of a different length than the bound total slices
// defensively within range.
func (c *Cursor) Window(l Ledger) Ledger {
	n := min(c.visible, len(l))
	return l[:n]
}
