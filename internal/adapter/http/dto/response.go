package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/naphex/ledger/internal/domain"
	"github.com/naphex/ledger/internal/usecase"
)

// TransactionResponse represents one ledger row in API responses.
type TransactionResponse struct {
	ID              string           `json:"id"`
	Kind            domain.Kind      `json:"kind"`
	TokenClass      string           `json:"token_class"`
	Timestamp       time.Time        `json:"timestamp"`
	AmountRequested decimal.Decimal  `json:"amount_requested"`
	AmountCredited  decimal.Decimal  `json:"amount_credited"`
	FinalAmount     *decimal.Decimal `json:"final_amount,omitempty"`
	Tax             decimal.Decimal  `json:"tax"`
	TaxRate         decimal.Decimal  `json:"tax_rate"`
	Status          domain.Status    `json:"status"`

	// BalanceAfter is null unless the transaction is approved; only
	// approved rows move the running balance.
	BalanceAfter *decimal.Decimal `json:"balance_after"`

	Method string `json:"method"`
}

// TransactionFromDomain converts a ledger transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:              t.ID,
		Kind:            t.Kind,
		TokenClass:      string(t.TokenClass),
		Timestamp:       t.Timestamp,
		AmountRequested: t.AmountRequested,
		AmountCredited:  t.AmountCredited,
		FinalAmount:     t.FinalAmount,
		Tax:             t.Tax,
		TaxRate:         t.TaxRate,
		Status:          t.Status,
		BalanceAfter:    t.BalanceAfter,
		Method:          t.Method,
	}
}

// TransactionsFromDomain converts a ledger to responses.
func TransactionsFromDomain(ledger domain.Ledger) []*TransactionResponse {
	result := make([]*TransactionResponse, len(ledger))
	for i := range ledger {
		result[i] = TransactionFromDomain(&ledger[i])
	}
	return result
}

// SummaryResponse represents ledger header numbers.
type SummaryResponse struct {
	Total    int                        `json:"total"`
	Approved int                        `json:"approved"`
	Rejected int                        `json:"rejected"`
	Pending  int                        `json:"pending"`
	Balances map[string]decimal.Decimal `json:"balances"`
}

// SummaryFromDomain converts a ledger summary to a response.
func SummaryFromDomain(s domain.Summary) *SummaryResponse {
	balances := make(map[string]decimal.Decimal, len(s.Balances))
	for class, balance := range s.Balances {
		balances[string(class)] = balance
	}

	return &SummaryResponse{
		Total:    s.Total,
		Approved: s.Approved,
		Rejected: s.Rejected,
		Pending:  s.Pending,
		Balances: balances,
	}
}

// LedgerResponse is a filtered, windowed ledger page.
type LedgerResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Summary      *SummaryResponse       `json:"summary"`
	Total        int                    `json:"total"`
	HasMore      bool                   `json:"has_more"`
}

// LedgerFromPage converts a usecase ledger page to a response.
func LedgerFromPage(page *usecase.LedgerPage) *LedgerResponse {
	return &LedgerResponse{
		Transactions: TransactionsFromDomain(page.Transactions),
		Summary:      SummaryFromDomain(page.Summary),
		Total:        page.Total,
		HasMore:      page.HasMore,
	}
}

// WithdrawalResponse represents a payout request in API responses.
type WithdrawalResponse struct {
	ID              string          `json:"id"`
	UserKey         string          `json:"user_key"`
	TokenClass      string          `json:"token_class"`
	RequestedTokens decimal.Decimal `json:"requested_tokens"`
	Tax             decimal.Decimal `json:"tax"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	FinalTokens     decimal.Decimal `json:"final_tokens"`
	Method          string          `json:"method"`
	Status          domain.Status   `json:"status"`
	DecidedBy       string          `json:"decided_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// WithdrawalFromDomain converts a payout request to a response.
func WithdrawalFromDomain(w *domain.WithdrawalRequest) *WithdrawalResponse {
	return &WithdrawalResponse{
		ID:              w.ID,
		UserKey:         w.UserKey,
		TokenClass:      string(w.TokenClass),
		RequestedTokens: w.RequestedTokens,
		Tax:             w.Tax,
		TaxRate:         w.TaxRate,
		FinalTokens:     w.FinalTokens,
		Method:          w.Method,
		Status:          w.Status,
		DecidedBy:       w.DecidedBy,
		CreatedAt:       w.CreatedAt,
		UpdatedAt:       w.UpdatedAt,
	}
}

// WithdrawalsFromDomain converts payout requests to responses.
func WithdrawalsFromDomain(reqs []*domain.WithdrawalRequest) []*WithdrawalResponse {
	result := make([]*WithdrawalResponse, len(reqs))
	for i, w := range reqs {
		result[i] = WithdrawalFromDomain(w)
	}
	return result
}

// DailyPayoutResponse is one row of the payout report.
type DailyPayoutResponse struct {
	Day            string          `json:"day"`
	Count          int             `json:"count"`
	TotalRequested decimal.Decimal `json:"total_requested"`
	TotalTax       decimal.Decimal `json:"total_tax"`
	TotalFinal     decimal.Decimal `json:"total_final"`
}

// PayoutReportResponse is the admin payout report.
type PayoutReportResponse struct {
	From        string                 `json:"from"`
	To          string                 `json:"to"`
	Days        []*DailyPayoutResponse `json:"days"`
	Count       int                    `json:"count"`
	TotalFinal  decimal.Decimal        `json:"total_final"`
	GeneratedAt time.Time              `json:"generated_at"`
}

// PayoutReportFromDomain converts a payout report to a response.
func PayoutReportFromDomain(r *usecase.DailyPayoutReport) *PayoutReportResponse {
	days := make([]*DailyPayoutResponse, len(r.Days))
	for i, d := range r.Days {
		days[i] = &DailyPayoutResponse{
			Day:            d.Day.Format("2006-01-02"),
			Count:          d.Count,
			TotalRequested: d.TotalRequested,
			TotalTax:       d.TotalTax,
			TotalFinal:     d.TotalFinal,
		}
	}

	return &PayoutReportResponse{
		From:        r.From.Format("2006-01-02"),
		To:          r.To.Format("2006-01-02"),
		Days:        days,
		Count:       r.Count,
		TotalFinal:  r.TotalFinal,
		GeneratedAt: r.GeneratedAt,
	}
}

// ReconciliationResponse is the per-user balance check result.
type ReconciliationResponse struct {
	UserKey   string                         `json:"user_key"`
	Clean     bool                           `json:"clean"`
	Results   []ReconciliationResultResponse `json:"results"`
	CheckedAt time.Time                      `json:"checked_at"`
}

// ReconciliationResultResponse is one token class's comparison.
type ReconciliationResultResponse struct {
	TokenClass      string          `json:"token_class"`
	ReportedBalance decimal.Decimal `json:"reported_balance"`
	DerivedBalance  decimal.Decimal `json:"derived_balance"`
	Difference      decimal.Decimal `json:"difference"`
	IsReconciled    bool            `json:"is_reconciled"`
}

// ReconciliationFromDomain converts a reconciliation report to a response.
func ReconciliationFromDomain(r *usecase.ReconciliationReport) *ReconciliationResponse {
	results := make([]ReconciliationResultResponse, len(r.Results))
	for i, res := range r.Results {
		results[i] = ReconciliationResultResponse{
			TokenClass:      string(res.TokenClass),
			ReportedBalance: res.ReportedBalance,
			DerivedBalance:  res.DerivedBalance,
			Difference:      res.Difference,
			IsReconciled:    res.IsReconciled,
		}
	}

	return &ReconciliationResponse{
		UserKey:   r.UserKey,
		Clean:     r.Clean,
		Results:   results,
		CheckedAt: r.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
