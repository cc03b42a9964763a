package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/naphex/ledger/internal/domain"
)

// SnapshotSource fetches a full user-state snapshot from the upstream
// platform API on demand (the pull counterpart of the event stream).
type SnapshotSource interface {
	Fetch(ctx context.Context, userKey string) (*domain.Snapshot, error)
}

// LedgerCache stores the latest reconciled ledger per user. A rebuild
// replaces the cached value wholesale; there is no partial update.
type LedgerCache interface {
	Get(ctx context.Context, userKey string) (domain.Ledger, error)
	Set(ctx context.Context, userKey string, ledger domain.Ledger, ttl time.Duration) error
	Invalidate(ctx context.Context, userKey string) error
}

// WithdrawalRepository defines data access for payout requests.
type WithdrawalRepository interface {
	Create(ctx context.Context, tx Transaction, req *domain.WithdrawalRequest) error
	GetByID(ctx context.Context, id string) (*domain.WithdrawalRequest, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.WithdrawalRequest, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.Status, decidedBy string, updatedAt time.Time) error
	List(ctx context.Context, status domain.Status, limit, offset int) ([]*domain.WithdrawalRequest, error)
	ListByUser(ctx context.Context, userKey string, limit, offset int) ([]*domain.WithdrawalRequest, error)
	DailyPayouts(ctx context.Context, from, to time.Time) ([]*DailyPayout, error)
}

// UserRepository defines data access for admin-console users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs operations that failed with a transient database
// error (deadlock, serialization failure).
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

//go:generate mockgen -destination=mocks/mock_idempotency.go -package=mocks github.com/naphex/ledger/internal/usecase IdempotencyStore

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// LedgerBroadcaster pushes rebuilt ledgers to live subscribers (the SSE
// re-broadcast path to player and admin views).
type LedgerBroadcaster interface {
	Publish(userKey string, payload []byte)
}

// DailyPayout is one row of the admin payout report.
type DailyPayout struct {
	Day            time.Time
	Count          int
	TotalRequested decimal.Decimal
	TotalTax       decimal.Decimal
	TotalFinal     decimal.Decimal
}
