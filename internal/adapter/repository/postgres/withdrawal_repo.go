package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/naphex/ledger/internal/domain"
	"github.com/naphex/ledger/internal/usecase"
)

// WithdrawalRepository implements payout-request persistence
type WithdrawalRepository struct {
	pool *pgxpool.Pool
}

// NewWithdrawalRepository creates a new withdrawal repository
func NewWithdrawalRepository(pool *pgxpool.Pool) *WithdrawalRepository {
	return &WithdrawalRepository{pool: pool}
}

const withdrawalColumns = `id, user_key, token_class, requested_tokens, tax, tax_rate,
	       final_tokens, method, status, decided_by, created_at, updated_at`

// Create inserts a new payout request within the given transaction.
func (r *WithdrawalRepository) Create(ctx context.Context, tx usecase.Transaction, req *domain.WithdrawalRequest) error {
	query := `
		INSERT INTO withdrawal_requests (
			id, user_key, token_class, requested_tokens, tax, tax_rate,
			final_tokens, method, status, decided_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := pgxTx(tx).Exec(ctx, query,
		req.ID,
		req.UserKey,
		req.TokenClass,
		req.RequestedTokens,
		req.Tax,
		req.TaxRate,
		req.FinalTokens,
		req.Method,
		req.Status,
		req.DecidedBy,
		req.CreatedAt,
		req.UpdatedAt,
	)

	return err
}

// GetByID retrieves a payout request by ID
func (r *WithdrawalRepository) GetByID(ctx context.Context, id string) (*domain.WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests WHERE id = $1`

	req, err := scanWithdrawal(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrWithdrawalNotFound
	}

	return req, err
}

// GetByIDForUpdate retrieves a payout request with a row lock, so a
// concurrent decision on the same request blocks until commit.
func (r *WithdrawalRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests WHERE id = $1 FOR UPDATE`

	req, err := scanWithdrawal(pgxTx(tx).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrWithdrawalNotFound
	}

	return req, err
}

// UpdateStatus records a decision on a payout request.
func (r *WithdrawalRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.Status, decidedBy string, updatedAt time.Time) error {
	query := `
		UPDATE withdrawal_requests
		SET status = $2, decided_by = $3, updated_at = $4
		WHERE id = $1
	`

	tag, err := pgxTx(tx).Exec(ctx, query, id, status, decidedBy, updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWithdrawalNotFound
	}

	return nil
}

// List retrieves payout requests, optionally filtered by status, newest first.
func (r *WithdrawalRepository) List(ctx context.Context, status domain.Status, limit, offset int) ([]*domain.WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests`
	args := []any{}

	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}

	query += ` ORDER BY created_at DESC`
	query += limitOffsetClause(len(args))
	args = append(args, limit, offset)

	return r.queryWithdrawals(ctx, query, args...)
}

// ListByUser retrieves one user's payout requests, newest first.
func (r *WithdrawalRepository) ListByUser(ctx context.Context, userKey string, limit, offset int) ([]*domain.WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + `
		FROM withdrawal_requests
		WHERE user_key = $1
		ORDER BY created_at DESC` + limitOffsetClause(1)

	return r.queryWithdrawals(ctx, query, userKey, limit, offset)
}

// DailyPayouts aggregates approved payouts per calendar day over a range.
func (r *WithdrawalRepository) DailyPayouts(ctx context.Context, from, to time.Time) ([]*usecase.DailyPayout, error) {
	query := `
		SELECT date_trunc('day', updated_at) AS day,
		       COUNT(*),
		       COALESCE(SUM(requested_tokens), 0),
		       COALESCE(SUM(tax), 0),
		       COALESCE(SUM(final_tokens), 0)
		FROM withdrawal_requests
		WHERE status = $1 AND updated_at BETWEEN $2 AND $3
		GROUP BY day
		ORDER BY day
	`

	rows, err := r.pool.Query(ctx, query, domain.StatusApproved, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []*usecase.DailyPayout
	for rows.Next() {
		var d usecase.DailyPayout
		if err := rows.Scan(&d.Day, &d.Count, &d.TotalRequested, &d.TotalTax, &d.TotalFinal); err != nil {
			return nil, err
		}
		days = append(days, &d)
	}

	return days, rows.Err()
}

func (r *WithdrawalRepository) queryWithdrawals(ctx context.Context, query string, args ...any) ([]*domain.WithdrawalRequest, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []*domain.WithdrawalRequest
	for rows.Next() {
		req, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}

	return reqs, rows.Err()
}

func scanWithdrawal(row pgx.Row) (*domain.WithdrawalRequest, error) {
	var req domain.WithdrawalRequest
	err := row.Scan(
		&req.ID,
		&req.UserKey,
		&req.TokenClass,
		&req.RequestedTokens,
		&req.Tax,
		&req.TaxRate,
		&req.FinalTokens,
		&req.Method,
		&req.Status,
		&req.DecidedBy,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}
