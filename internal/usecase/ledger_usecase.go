package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/naphex/ledger/internal/domain"
	"github.com/naphex/ledger/internal/infrastructure/metrics"
)

// LedgerUseCase owns the snapshot → normalize → merge pipeline and the
// cached result. Every new snapshot triggers a full recompute that
// replaces the previous ledger wholesale; nothing is patched in place.
type LedgerUseCase struct {
	source      SnapshotSource
	cache       LedgerCache
	broadcaster LedgerBroadcaster
	metrics     *metrics.Metrics
	ledgerTTL   time.Duration
	pageSize    int
	now         func() time.Time
}

// NewLedgerUseCase creates a new LedgerUseCase. broadcaster and metrics
// may be nil.
func NewLedgerUseCase(source SnapshotSource, cache LedgerCache, broadcaster LedgerBroadcaster, m *metrics.Metrics) *LedgerUseCase {
	return &LedgerUseCase{
		source:      source,
		cache:       cache,
		broadcaster: broadcaster,
		metrics:     m,
		ledgerTTL:   DefaultLedgerTTL,
		now:         time.Now,
	}
}

// WithTTL overrides how long rebuilt ledgers stay cached. Zero keeps the
// default.
func (uc *LedgerUseCase) WithTTL(ttl time.Duration) *LedgerUseCase {
	if ttl > 0 {
		uc.ledgerTTL = ttl
	}
	return uc
}

// WithPageSize overrides the page size used when a read does not ask for
// one. Zero keeps the default.
func (uc *LedgerUseCase) WithPageSize(size int) *LedgerUseCase {
	if size > 0 {
		uc.pageSize = size
	}
	return uc
}

// Rebuild derives a fresh ledger from a snapshot, replaces the cached
// value for the user, and notifies live subscribers.
func (uc *LedgerUseCase) Rebuild(ctx context.Context, snap *domain.Snapshot) (domain.Ledger, error) {
	start := uc.now()

	ledger := domain.BuildLedger(domain.NormalizeSnapshot(snap, start))

	if err := uc.cache.Set(ctx, snap.UserKey, ledger, uc.ledgerTTL); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.SnapshotsProcessed.Inc()
		uc.metrics.RebuildDuration.Observe(time.Since(start).Seconds())
		uc.metrics.LedgerSize.Observe(float64(len(ledger)))
	}

	if uc.broadcaster != nil {
		if payload, err := json.Marshal(ledgerEvent(snap.UserKey, ledger)); err == nil {
			uc.broadcaster.Publish(snap.UserKey, payload)
		}
	}

	return ledger, nil
}

// ledgerEvent is the shape pushed to SSE subscribers after a rebuild.
func ledgerEvent(userKey string, ledger domain.Ledger) map[string]any {
	return map[string]any{
		"userKey":      userKey,
		"transactions": ledger,
		"summary":      ledger.Summarize(),
		"rebuiltAt":    time.Now().UTC(),
	}
}

// GetLedgerInput represents input for reading a reconciled ledger.
type GetLedgerInput struct {
	UserKey string
	Filter  domain.Filter
	Limit   int
	Offset  int
}

// LedgerPage is a visible window over a filtered ledger plus the header
// numbers the views render.
type LedgerPage struct {
	Transactions domain.Ledger
	Summary      domain.Summary
	Total        int
	HasMore      bool
}

// GetLedger returns the filtered, windowed ledger for a user. Cache
// misses fall back to a fresh snapshot fetch and rebuild, so a read
// always reflects a complete upstream state, never a partial one.
func (uc *LedgerUseCase) GetLedger(ctx context.Context, input GetLedgerInput) (*LedgerPage, error) {
	if err := domain.ValidateUserKey(input.UserKey); err != nil {
		return nil, err
	}
	if err := domain.ValidateDateRange(input.Filter.From, input.Filter.To); err != nil {
		return nil, err
	}

	if input.Limit == 0 && uc.pageSize > 0 {
		input.Limit = uc.pageSize
	}
	limit, offset, _ := domain.ValidatePagination(input.Limit, input.Offset)

	ledger, err := uc.cache.Get(ctx, input.UserKey)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.CacheMisses.Inc()
		}
		ledger, err = uc.refresh(ctx, input.UserKey)
		if err != nil {
			return nil, err
		}
	} else if uc.metrics != nil {
		uc.metrics.CacheHits.Inc()
	}

	filtered := ledger.Filter(input.Filter)

	end := offset + limit
	if offset > len(filtered) {
		offset = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return &LedgerPage{
		Transactions: filtered[offset:end],
		Summary:      filtered.Summarize(),
		Total:        len(filtered),
		HasMore:      end < len(filtered),
	}, nil
}

// GetSummary returns header counts and closing balances for the user's
// full ledger.
func (uc *LedgerUseCase) GetSummary(ctx context.Context, userKey string) (domain.Summary, error) {
	page, err := uc.GetLedger(ctx, GetLedgerInput{UserKey: userKey, Limit: 1})
	if err != nil {
		return domain.Summary{}, err
	}
	return page.Summary, nil
}

// Invalidate drops the cached ledger so the next read re-fetches. Called
// after admin decisions that change upstream state.
func (uc *LedgerUseCase) Invalidate(ctx context.Context, userKey string) error {
	return uc.cache.Invalidate(ctx, userKey)
}

func (uc *LedgerUseCase) refresh(ctx context.Context, userKey string) (domain.Ledger, error) {
	snap, err := uc.source.Fetch(ctx, userKey)
	if err != nil {
		return nil, err
	}
	if snap.UserKey == "" {
		snap.UserKey = userKey
	}
	return uc.Rebuild(ctx, snap)
}
