package broker

import (
	"sync"

	"github.com/anonto42/collabhub/backend/internal/models"
	"github.com/google/uuid"
)

// DefaultBufferSize is the per-subscriber channel capacity used when the
// broker is constructed with a non-positive buffer.
const DefaultBufferSize = 16

// Broker is a process-local publish/subscribe bus for notification events.
// Every subscriber gets its own buffered channel, so one slow consumer never
// blocks publishers or other consumers. When a subscriber's buffer is full,
// the subscriber is dropped and its channel closed; the durable copy of every
// notification lives in the notification store, the broker only serves live
// delivery.
type Broker struct {
	mu     sync.Mutex
	subs   map[string]*Subscription
	buffer int
}

// Subscription is one subscriber's independent feed of published notifications.
// The Events channel is closed when the subscription is closed, either by the
// subscriber or by the broker after a buffer overflow.
type Subscription struct {
	id     string
	broker *Broker
	ch     chan models.Notification
}

// New creates a Broker with the given per-subscriber buffer size.
func New(buffer int) *Broker {
	if buffer <= 0 {
		buffer = DefaultBufferSize
	}
	return &Broker{
		subs:   make(map[string]*Subscription),
		buffer: buffer,
	}
}

// Subscribe registers a new independent subscriber. The returned subscription
// receives every notification published after Subscribe returns. The caller
// must Close the subscription when done or it leaks.
func (b *Broker) Subscribe() *Subscription {
	sub := &Subscription{
		id:     uuid.NewString(),
		broker: b,
		ch:     make(chan models.Notification, b.buffer),
	}
	b.mu.Lock()
	b.subs[sub.id] = sub
	b.mu.Unlock()
	return sub
}

// Publish delivers the notification to every current subscriber without
// blocking. A subscriber whose buffer is full is disconnected on the spot
// rather than stalling delivery to the others. With no subscribers the event
// is dropped.
func (b *Broker) Publish(notification models.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, sub := range b.subs {
		select {
		case sub.ch <- notification:
		default:
			// Slow consumer: fail fast instead of blocking the publisher.
			delete(b.subs, id)
			close(sub.ch)
		}
	}
}

// SubscriberCount reports how many subscriptions are currently registered.
func (b *Broker) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broker) remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(sub.ch)
	}
}

// Events returns the subscriber's receive channel. The channel is closed when
// the subscription ends.
func (s *Subscription) Events() <-chan models.Notification {
	return s.ch
}

// Close unregisters the subscription and closes its channel. Safe to call
// more than once and safe to call after the broker has already disconnected
// the subscriber.
func (s *Subscription) Close() {
	s.broker.remove(s.id)
}
