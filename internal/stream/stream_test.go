package stream

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/collabhub/backend/internal/broker"
	"github.com/anonto42/collabhub/backend/internal/models"
)

func receive(t *testing.T, ch <-chan models.Notification) models.Notification {
	t.Helper()
	select {
	case got, ok := <-ch:
		if !ok {
			t.Fatal("channel closed unexpectedly")
		}
		return got
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return models.Notification{}
}

func TestConnectedEventArrivesFirst(t *testing.T) {
	bus := broker.New(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := New(bus, 1, time.Hour).Run(ctx)

	got := receive(t, events)
	if got.Type != models.NotificationSystem || got.Content != "connected" {
		t.Fatalf("first event = %s/%s, want SYSTEM/connected", got.Type, got.Content)
	}
}

func TestFiltersOtherUsersEvents(t *testing.T) {
	bus := broker.New(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := New(bus, 1, time.Hour).Run(ctx)
	receive(t, events) // connected

	// Subscription is live once the connected event has been consumed.
	bus.Publish(models.Notification{UserID: 2, Content: "not yours"})
	bus.Publish(models.Notification{UserID: 1, Content: "yours"})

	got := receive(t, events)
	if got.Content != "yours" {
		t.Fatalf("got %q, want the user's own event only", got.Content)
	}
}

func TestHeartbeatEmitted(t *testing.T) {
	bus := broker.New(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := New(bus, 1, 10*time.Millisecond).Run(ctx)
	receive(t, events) // connected

	got := receive(t, events)
	if got.Type != models.NotificationSystem || got.Content != "heartbeat" {
		t.Fatalf("got %s/%s, want SYSTEM/heartbeat", got.Type, got.Content)
	}
}

func TestCancelClosesStreamAndUnsubscribes(t *testing.T) {
	bus := broker.New(4)
	ctx, cancel := context.WithCancel(context.Background())

	events := New(bus, 1, time.Hour).Run(ctx)
	receive(t, events) // connected

	cancel()

	select {
	case _, ok := <-events:
		if ok {
			// A buffered event may still be in flight; the close must follow.
			if _, ok := <-events; ok {
				t.Fatal("stream still open after cancel")
			}
		}
	case <-time.After(time.Second):
		t.Fatal("stream did not close after cancel")
	}

	deadline := time.Now().Add(time.Second)
	for bus.SubscriberCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber count = %d, want 0 after cancel", bus.SubscriberCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBrokerDisconnectClosesStream(t *testing.T) {
	bus := broker.New(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := New(bus, 1, time.Hour).Run(ctx)
	receive(t, events) // connected

	// Overflow the subscription's buffer without draining the multiplexer
	// output; the broker drops the subscription and the stream must end.
	for i := 0; i < 8; i++ {
		bus.Publish(models.Notification{UserID: 1, Content: "filler"})
	}

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("stream did not close after broker disconnect")
		}
	}
}

func TestDefaultHeartbeatApplied(t *testing.T) {
	m := New(broker.New(0), 1, 0)
	if m.heartbeat != DefaultHeartbeat {
		t.Fatalf("heartbeat = %v, want %v", m.heartbeat, DefaultHeartbeat)
	}
}
