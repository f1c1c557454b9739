package signal

import (
	"testing"
	"time"
)

func TestBroadcastWakesSubscriber(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()
	defer cancel()

	h.Broadcast()

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("subscriber was not woken")
	}
}

// A burst of broadcasts coalesces into a single pending wake-up.
func TestBroadcastCoalesces(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()
	defer cancel()

	for i := 0; i < 5; i++ {
		h.Broadcast()
	}

	<-ch
	select {
	case <-ch:
		t.Fatal("expected a single coalesced wake-up")
	default:
	}
}

func TestBroadcastReachesAllSubscribers(t *testing.T) {
	h := NewHub()
	a, cancelA := h.Subscribe()
	defer cancelA()
	b, cancelB := h.Subscribe()
	defer cancelB()

	h.Broadcast()

	for _, ch := range []<-chan struct{}{a, b} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatal("subscriber missed the broadcast")
		}
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()
	cancel()

	h.Broadcast()

	select {
	case <-ch:
		t.Fatal("cancelled subscriber was woken")
	default:
	}
}

func TestBroadcastWithoutSubscribers(t *testing.T) {
	NewHub().Broadcast() // must not panic or block
}
