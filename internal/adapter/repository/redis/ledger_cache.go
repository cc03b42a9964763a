package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/naphex/ledger/internal/domain"
)

// ErrLedgerNotCached is returned when no reconciled ledger is stored for
// a user.
var ErrLedgerNotCached = errors.New("ledger not cached")

// LedgerCache implements usecase.LedgerCache. The whole ledger is stored
// as one JSON value per user; rebuilds overwrite it atomically.
type LedgerCache struct {
	client *redis.Client
	prefix string
}

// NewLedgerCache creates a new LedgerCache.
func NewLedgerCache(client *redis.Client) *LedgerCache {
	return &LedgerCache{
		client: client,
		prefix: "ledger:",
	}
}

// Get retrieves the cached ledger for a user.
func (c *LedgerCache) Get(ctx context.Context, userKey string) (domain.Ledger, error) {
	data, err := c.client.Get(ctx, c.prefix+userKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrLedgerNotCached
	}
	if err != nil {
		return nil, err
	}

	var ledger domain.Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		// A corrupt entry behaves like a miss; the caller rebuilds.
		return nil, ErrLedgerNotCached
	}

	return ledger, nil
}

// Set replaces the cached ledger for a user.
func (c *LedgerCache) Set(ctx context.Context, userKey string, ledger domain.Ledger, ttl time.Duration) error {
	data, err := json.Marshal(ledger)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, c.prefix+userKey, data, ttl).Err()
}

// Invalidate drops the cached ledger for a user.
func (c *LedgerCache) Invalidate(ctx context.Context, userKey string) error {
	return c.client.Del(ctx, c.prefix+userKey).Err()
}
