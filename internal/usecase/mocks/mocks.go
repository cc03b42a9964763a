package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/naphex/ledger/internal/domain"
	"github.com/naphex/ledger/internal/usecase"
)

// MockSnapshotSource is a mock implementation of SnapshotSource.
type MockSnapshotSource struct {
	FetchFunc func(ctx context.Context, userKey string) (*domain.Snapshot, error)
}

func NewMockSnapshotSource() *MockSnapshotSource {
	return &MockSnapshotSource{}
}

func (m *MockSnapshotSource) Fetch(ctx context.Context, userKey string) (*domain.Snapshot, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, userKey)
	}
	return &domain.Snapshot{UserKey: userKey}, nil
}

// MockLedgerCache is a mock implementation of LedgerCache backed by a map.
type MockLedgerCache struct {
	mu      sync.RWMutex
	ledgers map[string]domain.Ledger

	GetFunc        func(ctx context.Context, userKey string) (domain.Ledger, error)
	SetFunc        func(ctx context.Context, userKey string, ledger domain.Ledger, ttl time.Duration) error
	InvalidateFunc func(ctx context.Context, userKey string) error
}

func NewMockLedgerCache() *MockLedgerCache {
	return &MockLedgerCache{ledgers: make(map[string]domain.Ledger)}
}

func (m *MockLedgerCache) Get(ctx context.Context, userKey string) (domain.Ledger, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, userKey)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if ledger, ok := m.ledgers[userKey]; ok {
		return ledger, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockLedgerCache) Set(ctx context.Context, userKey string, ledger domain.Ledger, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, userKey, ledger, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledgers[userKey] = ledger
	return nil
}

func (m *MockLedgerCache) Invalidate(ctx context.Context, userKey string) error {
	if m.InvalidateFunc != nil {
		return m.InvalidateFunc(ctx, userKey)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ledgers, userKey)
	return nil
}

// MockWithdrawalRepository is a mock implementation of WithdrawalRepository.
type MockWithdrawalRepository struct {
	mu       sync.RWMutex
	requests map[string]*domain.WithdrawalRequest

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, req *domain.WithdrawalRequest) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.WithdrawalRequest, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.WithdrawalRequest, error)
	UpdateStatusFunc     func(ctx context.Context, tx usecase.Transaction, id string, status domain.Status, decidedBy string, updatedAt time.Time) error
	ListFunc             func(ctx context.Context, status domain.Status, limit, offset int) ([]*domain.WithdrawalRequest, error)
	ListByUserFunc       func(ctx context.Context, userKey string, limit, offset int) ([]*domain.WithdrawalRequest, error)
	DailyPayoutsFunc     func(ctx context.Context, from, to time.Time) ([]*usecase.DailyPayout, error)
}

func NewMockWithdrawalRepository() *MockWithdrawalRepository {
	return &MockWithdrawalRepository{requests: make(map[string]*domain.WithdrawalRequest)}
}

func (m *MockWithdrawalRepository) Create(ctx context.Context, tx usecase.Transaction, req *domain.WithdrawalRequest) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, req)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *req
	m.requests[req.ID] = &clone
	return nil
}

func (m *MockWithdrawalRepository) GetByID(ctx context.Context, id string) (*domain.WithdrawalRequest, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if req, ok := m.requests[id]; ok {
		clone := *req
		return &clone, nil
	}
	return nil, domain.ErrWithdrawalNotFound
}

func (m *MockWithdrawalRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.WithdrawalRequest, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockWithdrawalRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.Status, decidedBy string, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, decidedBy, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return domain.ErrWithdrawalNotFound
	}
	req.Status = status
	req.DecidedBy = decidedBy
	req.UpdatedAt = updatedAt
	return nil
}

func (m *MockWithdrawalRepository) List(ctx context.Context, status domain.Status, limit, offset int) ([]*domain.WithdrawalRequest, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, status, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.WithdrawalRequest, 0, len(m.requests))
	for _, req := range m.requests {
		if status != "" && req.Status != status {
			continue
		}
		clone := *req
		out = append(out, &clone)
	}
	return out, nil
}

func (m *MockWithdrawalRepository) ListByUser(ctx context.Context, userKey string, limit, offset int) ([]*domain.WithdrawalRequest, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userKey, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.WithdrawalRequest, 0)
	for _, req := range m.requests {
		if req.UserKey == userKey {
			clone := *req
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *MockWithdrawalRepository) DailyPayouts(ctx context.Context, from, to time.Time) ([]*usecase.DailyPayout, error) {
	if m.DailyPayoutsFunc != nil {
		return m.DailyPayoutsFunc(ctx, from, to)
	}
	return nil, nil
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	CreateFunc     func(ctx context.Context, user *domain.User) error
	GetByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if user, ok := m.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// MockAuditRepository records audit logs in memory.
type MockAuditRepository struct {
	mu   sync.Mutex
	Logs []*domain.AuditLog
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, log)
	return nil
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	return m.Create(ctx, log)
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.AuditLog(nil), m.Logs...), nil
}

// MockTransaction is a no-op transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
	Committed    bool
	RolledBack   bool
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	if t.CommitFunc != nil {
		return t.CommitFunc(ctx)
	}
	t.Committed = true
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if t.RollbackFunc != nil {
		return t.RollbackFunc(ctx)
	}
	t.RolledBack = true
	return nil
}

// MockTransactionManager hands out MockTransactions.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockIDGenerator returns sequential IDs.
type MockIDGenerator struct {
	mu           sync.Mutex
	next         int
	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return fmt.Sprintf("mock-id-%d", m.next)
}

// MockBroadcaster records published payloads.
type MockBroadcaster struct {
	mu        sync.Mutex
	Published map[string][][]byte
}

func NewMockBroadcaster() *MockBroadcaster {
	return &MockBroadcaster{Published: make(map[string][][]byte)}
}

func (m *MockBroadcaster) Publish(userKey string, payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published[userKey] = append(m.Published[userKey], payload)
}
