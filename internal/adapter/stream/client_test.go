package stream

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/naphex/ledger/internal/domain"
	"github.com/naphex/ledger/internal/infrastructure/logging"
)

func testLogger() *logging.Logger {
	return logging.New(slog.LevelError, "text")
}

func snapshotEvent(userKey string) string {
	return fmt.Sprintf(
		"data: {\"success\":true,\"userData\":{\"userIds\":{\"myuserid\":%q},\"orders\":{\"o1\":{\"id\":\"o1\",\"creditedTokens\":100,\"status\":\"paid\"}}}}\n\n",
		userKey,
	)
}

func collectSnapshots(mu *sync.Mutex, got *[]*domain.Snapshot) SnapshotHandler {
	return func(ctx context.Context, snap *domain.Snapshot) error {
		mu.Lock()
		defer mu.Unlock()
		*got = append(*got, snap)
		return nil
	}
}

func TestClientConsumesEvents(t *testing.T) {
	var mu sync.Mutex
	var got []*domain.Snapshot

	done := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, snapshotEvent("user-1"))
		fmt.Fprint(w, snapshotEvent("user-2"))
		w.(http.Flusher).Flush()
		<-done
	}))
	defer server.Close()
	defer close(done)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := NewClient(server.URL, 10*time.Millisecond, collectSnapshots(&mu, &got), testLogger(), nil)

	go func() { _ = client.Run(ctx) }()

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) >= 2
	})

	mu.Lock()
	defer mu.Unlock()
	if got[0].UserKey != "user-1" || got[1].UserKey != "user-2" {
		t.Fatalf("unexpected snapshots: %s, %s", got[0].UserKey, got[1].UserKey)
	}
}

func TestClientReconnects(t *testing.T) {
	var connects atomic.Int32
	var mu sync.Mutex
	var got []*domain.Snapshot

	// Each connection serves one event and drops. The client must come
	// back on its own, repeatedly.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := connects.Add(1)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, snapshotEvent(fmt.Sprintf("user-%d", n)))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := NewClient(server.URL, 5*time.Millisecond, collectSnapshots(&mu, &got), testLogger(), nil)

	go func() { _ = client.Run(ctx) }()

	waitFor(t, func() bool { return connects.Load() >= 3 })

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) >= 3
	})
}

func TestClientDropsUnusableSnapshots(t *testing.T) {
	var mu sync.Mutex
	var got []*domain.Snapshot

	done := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {not json at all\n\n")
		fmt.Fprint(w, "data: {\"success\":false}\n\n")
		fmt.Fprint(w, snapshotEvent("user-1"))
		w.(http.Flusher).Flush()
		<-done
	}))
	defer server.Close()
	defer close(done)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := NewClient(server.URL, 10*time.Millisecond, collectSnapshots(&mu, &got), testLogger(), nil)

	go func() { _ = client.Run(ctx) }()

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) >= 1
	})

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0].UserKey != "user-1" {
		t.Fatalf("expected only the good snapshot, got %d", len(got))
	}
}

func TestClientStopsOnCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())

	client := NewClient(server.URL, 5*time.Millisecond, func(context.Context, *domain.Snapshot) error {
		return nil
	}, testLogger(), nil)

	errCh := make(chan error, 1)
	go func() { errCh <- client.Run(ctx) }()

	cancel()

	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("client did not stop after cancel")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
