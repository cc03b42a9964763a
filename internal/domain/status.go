package domain

import "strings"

// Status is the closed set of display states a transaction can be in.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus maps a raw upstream status string onto the closed Status
// set. Matching is case-insensitive. Unknown or absent statuses map to
// pending so an unmapped raw string never reaches calling code.
func ParseStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "paid", "approved", "completed":
		return StatusApproved
	case "rejected", "failed":
		return StatusRejected
	default:
		return StatusPending
	}
}
