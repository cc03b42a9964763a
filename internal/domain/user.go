package domain

import (
	"errors"
	"time"
)

// User represents an admin-console user.
type User struct {
	ID             string
	Email          string
	Name           string
	HashedPassword string
	Role           Role
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Active         bool
}

// Role represents a console user's access level.
type Role string

const (
	// RoleAdmin has full access, including payout approvals
	RoleAdmin Role = "admin"

	// RoleSupport can view ledgers and reports, but cannot decide withdrawals
	RoleSupport Role = "support"
)

var validRoles = map[Role]bool{
	RoleAdmin:   true,
	RoleSupport: true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanDecideWithdrawals checks if the role can approve or reject payouts
func (r Role) CanDecideWithdrawals() bool {
	return r == RoleAdmin
}

// CanViewReports checks if the role can read reporting endpoints
func (r Role) CanViewReports() bool {
	return r.IsValid()
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)
