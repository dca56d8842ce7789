package broker

import (
	"testing"
	"time"

	"github.com/anonto42/collabhub/backend/internal/models"
)

func event(userID uint, content string) models.Notification {
	return models.Notification{
		UserID:    userID,
		Content:   content,
		Type:      models.NotificationSystem,
		CreatedAt: time.Now().UTC(),
	}
}

func TestSubscriberReceivesPublishedEvents(t *testing.T) {
	b := New(4)
	sub := b.Subscribe()
	defer sub.Close()

	b.Publish(event(1, "hello"))

	select {
	case got := <-sub.Events():
		if got.Content != "hello" {
			t.Fatalf("got content %q, want %q", got.Content, "hello")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestSubscribersAreIndependent(t *testing.T) {
	b := New(4)
	first := b.Subscribe()
	defer first.Close()
	second := b.Subscribe()
	defer second.Close()

	b.Publish(event(1, "broadcast"))

	for _, sub := range []*Subscription{first, second} {
		select {
		case got := <-sub.Events():
			if got.Content != "broadcast" {
				t.Fatalf("got content %q, want %q", got.Content, "broadcast")
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestPublishWithNoSubscribersDoesNotBlock(t *testing.T) {
	b := New(1)

	done := make(chan struct{})
	go func() {
		b.Publish(event(1, "dropped"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked with no subscribers")
	}
}

func TestSlowSubscriberIsDisconnected(t *testing.T) {
	b := New(2)
	slow := b.Subscribe()
	healthy := b.Subscribe()
	defer healthy.Close()

	// The healthy subscriber keeps consuming; the slow one never reads.
	// Its buffer fills on the first two publishes and overflows on the third.
	for i := 0; i < 3; i++ {
		b.Publish(event(1, "burst"))
		select {
		case <-healthy.Events():
		case <-time.After(time.Second):
			t.Fatalf("healthy subscriber missing event %d", i)
		}
	}

	if got := b.SubscriberCount(); got != 1 {
		t.Fatalf("subscriber count = %d, want 1 after overflow disconnect", got)
	}

	// The slow subscriber's channel drains its buffered events, then closes.
	received := 0
	for range slow.Events() {
		received++
	}
	if received != 2 {
		t.Fatalf("slow subscriber drained %d events, want 2", received)
	}

	// The healthy subscriber is still registered and still receives.
	b.Publish(event(1, "after"))
	select {
	case got := <-healthy.Events():
		if got.Content != "after" {
			t.Fatalf("got content %q, want %q", got.Content, "after")
		}
	case <-time.After(time.Second):
		t.Fatal("healthy subscriber stopped receiving after peer disconnect")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	b := New(4)
	sub := b.Subscribe()

	sub.Close()
	sub.Close()

	if got := b.SubscriberCount(); got != 0 {
		t.Fatalf("subscriber count = %d, want 0", got)
	}

	// Channel is closed; receiving must not block.
	select {
	case _, ok := <-sub.Events():
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("closed subscription channel still open")
	}
}

func TestClosedSubscriberNoLongerReceives(t *testing.T) {
	b := New(4)
	sub := b.Subscribe()
	sub.Close()

	b.Publish(event(1, "late"))

	if _, ok := <-sub.Events(); ok {
		t.Fatal("closed subscription received an event")
	}
}
