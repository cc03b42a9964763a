package stream

import (
	"testing"
	"time"
)

func TestHubPublishToSubscribers(t *testing.T) {
	hub := NewHub(nil)

	ch1, cancel1 := hub.Subscribe("user-1")
	defer cancel1()
	ch2, cancel2 := hub.Subscribe("user-1")
	defer cancel2()
	other, cancelOther := hub.Subscribe("user-2")
	defer cancelOther()

	hub.Publish("user-1", []byte("payload"))

	for _, ch := range []<-chan []byte{ch1, ch2} {
		select {
		case msg := <-ch:
			if string(msg) != "payload" {
				t.Fatalf("unexpected payload %q", msg)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive payload")
		}
	}

	select {
	case msg := <-other:
		t.Fatalf("user-2 subscriber received user-1 payload %q", msg)
	default:
	}
}

func TestHubCancelRemovesSubscriber(t *testing.T) {
	hub := NewHub(nil)

	_, cancel := hub.Subscribe("user-1")
	if hub.Subscribers("user-1") != 1 {
		t.Fatalf("expected 1 subscriber, got %d", hub.Subscribers("user-1"))
	}

	cancel()
	cancel() // idempotent

	if hub.Subscribers("user-1") != 0 {
		t.Fatalf("expected 0 subscribers after cancel, got %d", hub.Subscribers("user-1"))
	}

	// Publishing to nobody must not panic or block.
	hub.Publish("user-1", []byte("payload"))
}

func TestHubSkipsSlowSubscriber(t *testing.T) {
	hub := NewHub(nil)

	ch, cancel := hub.Subscribe("user-1")
	defer cancel()

	// Fill the buffer and keep publishing; the hub must never block.
	for i := 0; i < subscriberBuffer*3; i++ {
		hub.Publish("user-1", []byte("payload"))
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}

	if received != subscriberBuffer {
		t.Fatalf("expected exactly %d buffered payloads, got %d", subscriberBuffer, received)
	}
}
