package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/naphex/ledger/internal/domain"
)

// ReportUseCase produces the admin console's withdrawal-reporting views:
// daily payout aggregates from the admin store, and a reconciliation
// check of the derived ledger against the balances the upstream reports.
type ReportUseCase struct {
	withdrawalRepo WithdrawalRepository
	source         SnapshotSource
}

// NewReportUseCase creates a new ReportUseCase.
func NewReportUseCase(withdrawalRepo WithdrawalRepository, source SnapshotSource) *ReportUseCase {
	return &ReportUseCase{
		withdrawalRepo: withdrawalRepo,
		source:         source,
	}
}

// DailyPayoutReport aggregates approved payouts per calendar day.
type DailyPayoutReport struct {
	From        time.Time
	To          time.Time
	Days        []*DailyPayout
	Count       int
	TotalFinal  decimal.Decimal
	GeneratedAt time.Time
}

// GenerateDailyPayouts builds the payout report for an inclusive date
// range.
func (uc *ReportUseCase) GenerateDailyPayouts(ctx context.Context, from, to time.Time) (*DailyPayoutReport, error) {
	if err := domain.ValidateDateRange(&from, &to); err != nil {
		return nil, err
	}

	days, err := uc.withdrawalRepo.DailyPayouts(ctx, domain.DayStart(from), domain.DayEnd(to))
	if err != nil {
		return nil, err
	}

	report := &DailyPayoutReport{
		From:        domain.DayStart(from),
		To:          domain.DayEnd(to),
		Days:        days,
		GeneratedAt: time.Now().UTC(),
	}

	for _, d := range days {
		report.Count += d.Count
		report.TotalFinal = report.TotalFinal.Add(d.TotalFinal)
	}

	return report, nil
}

// ReconciliationResult compares one token class's derived closing
// balance against the balance the upstream snapshot reports.
type ReconciliationResult struct {
	TokenClass      domain.TokenClass
	ReportedBalance decimal.Decimal
	DerivedBalance  decimal.Decimal
	Difference      decimal.Decimal
	IsReconciled    bool
}

// ReconciliationReport is the full per-user reconciliation outcome.
type ReconciliationReport struct {
	UserKey   string
	Results   []ReconciliationResult
	Clean     bool
	CheckedAt time.Time
}

// ReconcileUser fetches a fresh snapshot, derives the ledger, and
// compares closing balances per token class with what the platform
// reports. A difference means the platform mutated state the ledger
// never saw (or vice versa) and is worth an operator's attention.
func (uc *ReportUseCase) ReconcileUser(ctx context.Context, userKey string) (*ReconciliationReport, error) {
	if err := domain.ValidateUserKey(userKey); err != nil {
		return nil, err
	}

	snap, err := uc.source.Fetch(ctx, userKey)
	if err != nil {
		return nil, err
	}

	summary := domain.BuildLedger(domain.NormalizeSnapshot(snap, time.Now().UTC())).Summarize()

	reported := map[domain.TokenClass]decimal.Decimal{
		domain.TokenRegular: snap.Tokens,
		domain.TokenBinary:  snap.BinaryTokens,
		domain.TokenWon:     snap.WonTokens,
	}

	report := &ReconciliationReport{
		UserKey:   userKey,
		Clean:     true,
		CheckedAt: time.Now().UTC(),
	}

	for _, class := range []domain.TokenClass{domain.TokenRegular, domain.TokenBinary, domain.TokenWon} {
		derived := summary.Balances[class]
		diff := reported[class].Sub(derived)

		result := ReconciliationResult{
			TokenClass:      class,
			ReportedBalance: reported[class],
			DerivedBalance:  derived,
			Difference:      diff,
			IsReconciled:    diff.IsZero(),
		}
		if !result.IsReconciled {
			report.Clean = false
		}
		report.Results = append(report.Results, result)
	}

	return report, nil
}
