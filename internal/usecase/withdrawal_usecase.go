package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/naphex/ledger/internal/domain"
	"github.com/naphex/ledger/internal/infrastructure/metrics"
)

// WithdrawalUseCase handles the admin-console payout flow: players file
// requests, admins approve or reject them. Decisions run inside a
// database transaction with the request row locked.
type WithdrawalUseCase struct {
	txManager      TransactionManager
	withdrawalRepo WithdrawalRepository
	auditRepo      AuditRepository
	ledgerUC       *LedgerUseCase
	idGen          IDGenerator
	metrics        *metrics.Metrics
	taxRate        decimal.Decimal
	retrier        Retrier
}

// NewWithdrawalUseCase creates a new WithdrawalUseCase.
func NewWithdrawalUseCase(
	txManager TransactionManager,
	withdrawalRepo WithdrawalRepository,
	auditRepo AuditRepository,
	ledgerUC *LedgerUseCase,
	idGen IDGenerator,
	m *metrics.Metrics,
	taxRate decimal.Decimal,
) *WithdrawalUseCase {
	return &WithdrawalUseCase{
		txManager:      txManager,
		withdrawalRepo: withdrawalRepo,
		auditRepo:      auditRepo,
		ledgerUC:       ledgerUC,
		idGen:          idGen,
		metrics:        m,
		taxRate:        taxRate,
	}
}

// WithRetrier retries decision transactions that hit transient
// database errors. Zero value (nil) means no retries.
func (uc *WithdrawalUseCase) WithRetrier(r Retrier) *WithdrawalUseCase {
	uc.retrier = r
	return uc
}

// CreateWithdrawalInput represents input for filing a payout request.
type CreateWithdrawalInput struct {
	UserKey         string
	TokenClass      domain.TokenClass
	RequestedTokens decimal.Decimal
	Method          string
}

// CreateWithdrawal files a pending payout request.
func (uc *WithdrawalUseCase) CreateWithdrawal(ctx context.Context, input CreateWithdrawalInput) (*domain.WithdrawalRequest, error) {
	if err := domain.ValidateUserKey(input.UserKey); err != nil {
		return nil, err
	}
	if err := domain.ValidatePayoutAmount(input.RequestedTokens); err != nil {
		return nil, err
	}

	req, err := domain.NewWithdrawalRequest(
		uc.idGen.Generate(),
		input.UserKey,
		input.TokenClass,
		input.RequestedTokens,
		uc.taxRate,
		input.Method,
		time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.withdrawalRepo.Create(txCtx, tx, req); err != nil {
		return nil, err
	}

	uc.audit(txCtx, tx, domain.AuditActionWithdrawalCreate, req, input.UserKey)

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.WithdrawalsCreated.Inc()
	}

	return req, nil
}

// Approve marks a pending request approved. The user's cached ledger is
// invalidated so the next read reflects the decision.
func (uc *WithdrawalUseCase) Approve(ctx context.Context, id string, decidedBy string) (*domain.WithdrawalRequest, error) {
	req, err := uc.decide(ctx, id, domain.StatusApproved, decidedBy, domain.AuditActionWithdrawalApprove)
	if err != nil {
		return nil, err
	}
	if uc.metrics != nil {
		uc.metrics.WithdrawalsApproved.Inc()
	}
	return req, nil
}

// Reject marks a pending request rejected.
func (uc *WithdrawalUseCase) Reject(ctx context.Context, id string, decidedBy string) (*domain.WithdrawalRequest, error) {
	req, err := uc.decide(ctx, id, domain.StatusRejected, decidedBy, domain.AuditActionWithdrawalReject)
	if err != nil {
		return nil, err
	}
	if uc.metrics != nil {
		uc.metrics.WithdrawalsRejected.Inc()
	}
	return req, nil
}

func (uc *WithdrawalUseCase) decide(ctx context.Context, id string, status domain.Status, decidedBy string, action domain.AuditAction) (*domain.WithdrawalRequest, error) {
	if uc.retrier == nil {
		return uc.decideOnce(ctx, id, status, decidedBy, action)
	}

	var req *domain.WithdrawalRequest
	err := uc.retrier.Retry(ctx, func() error {
		var decideErr error
		req, decideErr = uc.decideOnce(ctx, id, status, decidedBy, action)
		return decideErr
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (uc *WithdrawalUseCase) decideOnce(ctx context.Context, id string, status domain.Status, decidedBy string, action domain.AuditAction) (*domain.WithdrawalRequest, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	req, err := uc.withdrawalRepo.GetByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return nil, err
	}

	if req.Decided() {
		return nil, domain.ErrAlreadyDecided
	}

	now := time.Now().UTC()
	if err := uc.withdrawalRepo.UpdateStatus(txCtx, tx, id, status, decidedBy, now); err != nil {
		return nil, err
	}

	req.Status = status
	req.DecidedBy = decidedBy
	req.UpdatedAt = now

	uc.audit(txCtx, tx, action, req, decidedBy)

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.ledgerUC != nil {
		// Best effort: a stale cache self-heals on TTL expiry.
		_ = uc.ledgerUC.Invalidate(ctx, req.UserKey)
	}

	return req, nil
}

// ListWithdrawalsInput represents input for the admin approval queue.
type ListWithdrawalsInput struct {
	Status domain.Status
	Limit  int
	Offset int
}

// ListWithdrawals lists payout requests, optionally by status.
func (uc *WithdrawalUseCase) ListWithdrawals(ctx context.Context, input ListWithdrawalsInput) ([]*domain.WithdrawalRequest, error) {
	limit, offset, _ := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.withdrawalRepo.List(ctx, input.Status, limit, offset)
}

// ListUserWithdrawals lists one user's payout requests.
func (uc *WithdrawalUseCase) ListUserWithdrawals(ctx context.Context, userKey string, limit, offset int) ([]*domain.WithdrawalRequest, error) {
	if err := domain.ValidateUserKey(userKey); err != nil {
		return nil, err
	}
	limit, offset, _ = domain.ValidatePagination(limit, offset)
	return uc.withdrawalRepo.ListByUser(ctx, userKey, limit, offset)
}

// GetWithdrawal fetches a single payout request.
func (uc *WithdrawalUseCase) GetWithdrawal(ctx context.Context, id string) (*domain.WithdrawalRequest, error) {
	return uc.withdrawalRepo.GetByID(ctx, id)
}

func (uc *WithdrawalUseCase) audit(ctx context.Context, tx Transaction, action domain.AuditAction, req *domain.WithdrawalRequest, actor string) {
	if uc.auditRepo == nil {
		return
	}

	// Audit failures must not fail the payout decision itself.
	_ = uc.auditRepo.CreateTx(ctx, tx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		UserID:       actor,
		Action:       string(action),
		ResourceType: "withdrawal",
		ResourceID:   req.ID,
		AfterState:   domain.MarshalState(req),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}
