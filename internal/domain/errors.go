package domain

import "errors"

var (
	// Snapshot errors
	ErrSnapshotFailed    = errors.New("snapshot reported failure: no user data to reconcile")
	ErrMalformedSnapshot = errors.New("snapshot payload is not valid JSON")
	ErrUserNotFound      = errors.New("user not found")

	// Withdrawal errors
	ErrWithdrawalNotFound = errors.New("withdrawal request not found")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrAlreadyDecided     = errors.New("withdrawal request has already been decided")
	ErrInvalidTokenClass  = errors.New("unknown token class")
)
