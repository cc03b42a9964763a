package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/naphex/ledger/internal/domain"
)

const (
	defaultTimeout   = 15 * time.Second
	maxResponseBytes = 16 << 20

	fetchRetries       = 2
	fetchRetryInterval = 200 * time.Millisecond
)

// Client implements usecase.SnapshotSource against the platform's HTTP
// API. On-demand fetches retry a couple of times on transport errors;
// anything longer is the stream's job.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an upstream API client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves one user's full state snapshot.
func (c *Client) Fetch(ctx context.Context, userKey string) (*domain.Snapshot, error) {
	endpoint := fmt.Sprintf("%s/api/users/%s/state", c.baseURL, url.PathEscape(userKey))

	var snap *domain.Snapshot
	operation := func() error {
		var err error
		snap, err = c.fetchOnce(ctx, endpoint)
		return err
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(fetchRetryInterval), fetchRetries),
		ctx,
	)
	if err := backoff.Retry(operation, b); err != nil {
		return nil, err
	}

	return snap, nil
}

func (c *Client) fetchOnce(ctx context.Context, endpoint string) (*domain.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, backoff.Permanent(domain.ErrUserNotFound)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, backoff.Permanent(fmt.Errorf("upstream returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}

	snap, err := domain.DecodeSnapshot(body)
	if err != nil {
		// A well-formed "success: false" or garbage body will not get
		// better on retry.
		return nil, backoff.Permanent(err)
	}

	return snap, nil
}
