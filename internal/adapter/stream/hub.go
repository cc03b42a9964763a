package stream

import (
	"sync"

	"github.com/naphex/ledger/internal/infrastructure/metrics"
)

const subscriberBuffer = 8

// Hub fans rebuilt ledgers out to live SSE subscribers, keyed by user.
// It implements usecase.LedgerBroadcaster on the publish side.
type Hub struct {
	mu      sync.RWMutex
	subs    map[string]map[chan []byte]struct{}
	metrics *metrics.Metrics
}

// NewHub creates a new Hub. metrics may be nil.
func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{
		subs:    make(map[string]map[chan []byte]struct{}),
		metrics: m,
	}
}

// Subscribe registers a listener for one user's ledger updates. The
// returned cancel func must be called when the listener goes away.
func (h *Hub) Subscribe(userKey string) (<-chan []byte, func()) {
	ch := make(chan []byte, subscriberBuffer)

	h.mu.Lock()
	if h.subs[userKey] == nil {
		h.subs[userKey] = make(map[chan []byte]struct{})
	}
	h.subs[userKey][ch] = struct{}{}
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.StreamSubscribers.Inc()
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[userKey], ch)
			if len(h.subs[userKey]) == 0 {
				delete(h.subs, userKey)
			}
			h.mu.Unlock()

			if h.metrics != nil {
				h.metrics.StreamSubscribers.Dec()
			}
		})
	}

	return ch, cancel
}

// Publish delivers a payload to every subscriber of the user. Slow
// subscribers are skipped rather than blocking the rebuild path; they
// catch up on the next event or via a plain GET.
func (h *Hub) Publish(userKey string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[userKey] {
		select {
		case ch <- payload:
		default:
		}
	}
}

// Subscribers reports the number of active listeners for a user.
func (h *Hub) Subscribers(userKey string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userKey])
}
