package stream

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/naphex/ledger/internal/domain"
	"github.com/naphex/ledger/internal/infrastructure/logging"
	"github.com/naphex/ledger/internal/infrastructure/metrics"
)

// SnapshotHandler consumes one decoded snapshot. Rebuild failures are
// logged, not retried: the next snapshot supersedes this one anyway.
type SnapshotHandler func(ctx context.Context, snap *domain.Snapshot) error

// Client consumes the upstream server-sent-event stream of user-state
// snapshots. The stream is the backbone of the live ledger: the client
// reconnects at a fixed interval, forever, and only stops when its
// context is cancelled. There is no give-up threshold.
type Client struct {
	url           string
	retryInterval time.Duration
	httpClient    *http.Client
	handler       SnapshotHandler
	logger        *logging.Logger
	metrics       *metrics.Metrics
}

// NewClient creates a stream client. metrics may be nil.
func NewClient(url string, retryInterval time.Duration, handler SnapshotHandler, logger *logging.Logger, m *metrics.Metrics) *Client {
	return &Client{
		url:           url,
		retryInterval: retryInterval,
		// No overall request timeout: the connection is expected to
		// stay open and deliver events indefinitely.
		httpClient: &http.Client{},
		handler:    handler,
		logger:     logger,
		metrics:    m,
	}
}

// Run consumes the stream until ctx is cancelled. Every disconnect, of
// any cause, schedules a reconnect after the fixed retry interval.
func (c *Client) Run(ctx context.Context) error {
	b := backoff.WithContext(backoff.NewConstantBackOff(c.retryInterval), ctx)

	return backoff.Retry(func() error {
		err := c.consume(ctx)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}

		if c.metrics != nil {
			c.metrics.StreamReconnects.Inc()
		}
		c.logger.WarnCtx(ctx, "stream disconnected, reconnecting",
			"error", err,
			"retry_in", c.retryInterval.String(),
		)

		if err == nil {
			// Clean EOF still reconnects.
			err = errors.New("stream closed")
		}
		return err
	}, b)
}

// consume opens one stream connection and dispatches events until it
// breaks.
func (c *Client) consume(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream returned status %d", resp.StatusCode)
	}

	if c.metrics != nil {
		c.metrics.StreamConnected.Set(1)
		defer c.metrics.StreamConnected.Set(0)
	}
	c.logger.InfoCtx(ctx, "stream connected", "url", c.url)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var data bytes.Buffer
	for scanner.Scan() {
		line := scanner.Bytes()

		// A blank line terminates one event.
		if len(line) == 0 {
			if data.Len() > 0 {
				c.dispatch(ctx, data.Bytes())
				data.Reset()
			}
			continue
		}

		// Only data fields carry snapshots; event names, ids, retry
		// hints and comments are irrelevant here.
		if rest, ok := bytes.CutPrefix(line, []byte("data:")); ok {
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.Write(bytes.TrimPrefix(rest, []byte(" ")))
		}
	}

	return scanner.Err()
}

func (c *Client) dispatch(ctx context.Context, payload []byte) {
	if c.metrics != nil {
		c.metrics.StreamEvents.Inc()
	}

	snap, err := domain.DecodeSnapshot(payload)
	if err != nil {
		// Failed or malformed snapshots are dropped; the previous
		// ledger stays visible until a good one arrives.
		if c.metrics != nil {
			c.metrics.SnapshotDecodeErrs.Inc()
		}
		c.logger.WarnCtx(ctx, "dropping unusable snapshot", "error", err)
		return
	}

	if err := c.handler(ctx, snap); err != nil {
		c.logger.ErrorCtx(ctx, "snapshot rebuild failed",
			"error", err,
			"user_key", snap.UserKey,
		)
	}
}
