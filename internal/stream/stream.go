package stream

import (
	"context"
	"time"

	"github.com/anonto42/collabhub/backend/internal/broker"
	"github.com/anonto42/collabhub/backend/internal/models"
)

// DefaultHeartbeat is the heartbeat period used when the multiplexer is
// constructed with a non-positive interval.
const DefaultHeartbeat = 30 * time.Second

// Multiplexer merges three event producers into one outbound sequence for a
// single client connection: a connection-established event, the broker's live
// feed filtered to one user, and a periodic heartbeat. One instance serves
// one connection.
type Multiplexer struct {
	bus       *broker.Broker
	userID    uint
	heartbeat time.Duration
}

// New creates a Multiplexer for the given user's connection.
func New(bus *broker.Broker, userID uint, heartbeat time.Duration) *Multiplexer {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &Multiplexer{bus: bus, userID: userID, heartbeat: heartbeat}
}

// Run subscribes to the broker and returns the merged event channel. The
// connection-established event is always delivered first. Cancelling the
// context unsubscribes from the broker, stops the heartbeat timer and closes
// the returned channel; no events are produced after that. The channel also
// closes when the broker disconnects the subscription (buffer overflow), in
// which case the client must reconnect to resubscribe.
func (m *Multiplexer) Run(ctx context.Context) <-chan models.Notification {
	out := make(chan models.Notification, 1)
	sub := m.bus.Subscribe()

	go func() {
		defer close(out)
		defer sub.Close()

		ticker := time.NewTicker(m.heartbeat)
		defer ticker.Stop()

		select {
		case out <- m.systemEvent("connected"):
		case <-ctx.Done():
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case notification, ok := <-sub.Events():
				if !ok {
					// Broker dropped us; terminate the connection.
					return
				}
				if notification.UserID != m.userID {
					continue
				}
				select {
				case out <- notification:
				case <-ctx.Done():
					return
				}
			case <-ticker.C:
				select {
				case out <- m.systemEvent("heartbeat"):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

func (m *Multiplexer) systemEvent(content string) models.Notification {
	return models.Notification{
		UserID:    m.userID,
		Content:   content,
		Type:      models.NotificationSystem,
		CreatedAt: time.Now().UTC(),
	}
}
