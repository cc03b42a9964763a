package domain

import (
	"encoding/json"
	"time"
)

// AuditLog records an admin-console action for compliance review.
type AuditLog struct {
	ID           string
	UserID       string // Who performed the action
	Action       string // What action (withdrawal.approve, user.login, ...)
	ResourceType string // Type of resource (withdrawal, ledger, user)
	ResourceID   string
	IPAddress    string
	RequestID    string
	BeforeState  JSON
	AfterState   JSON
	Status       string // success, failure, error
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	// Withdrawal actions
	AuditActionWithdrawalCreate  AuditAction = "withdrawal.create"
	AuditActionWithdrawalApprove AuditAction = "withdrawal.approve"
	AuditActionWithdrawalReject  AuditAction = "withdrawal.reject"

	// Ledger actions
	AuditActionLedgerView AuditAction = "ledger.view"

	// Auth actions
	AuditActionUserLogin AuditAction = "user.login"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
	AuditStatusError   AuditStatus = "error"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	UserID       string
	Action       string
	ResourceType string
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}
