package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/anonto42/collabhub/backend/internal/broker"
	"github.com/anonto42/collabhub/backend/internal/models"
	"github.com/anonto42/collabhub/backend/internal/repositories"
)

// NotificationService persists notification events and publishes them to the
// live broker. Persistence and delivery stay independent: the repository
// insert is durable, the broker publish is best-effort live fan-out.
type NotificationService struct {
	notifications repositories.NotificationRepository
	bus           *broker.Broker
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notifications repositories.NotificationRepository, bus *broker.Broker) *NotificationService {
	return &NotificationService{notifications: notifications, bus: bus}
}

// Create inserts a notification and publishes it to live subscribers.
func (s *NotificationService) Create(ctx context.Context, userID uint, content string, notificationType models.NotificationType, entityID string, action json.RawMessage) (*models.Notification, error) {
	notification := &models.Notification{
		UserID:    userID,
		Content:   content,
		Type:      notificationType,
		EntityID:  entityID,
		Action:    action,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return nil, err
	}
	s.bus.Publish(*notification)
	return notification, nil
}

// Retract deletes a superseded notification, e.g. a TEAM_INVITATION once the
// invitee has responded.
func (s *NotificationService) Retract(ctx context.Context, userID uint, entityID string, notificationType models.NotificationType) error {
	return s.notifications.DeleteByUserEntityAndType(ctx, userID, entityID, notificationType)
}

// MarkRead sets the read timestamp if unset. Idempotent: marking an
// already-read notification returns the existing row with its original
// timestamp. A missing notification surfaces repositories.ErrNotFound.
// The ownership check runs before any write, so a caller who is not the
// recipient gets ErrNotOwned and the row stays untouched.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uint) (*models.Notification, error) {
	notification, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if notification.UserID != userID {
		return nil, ErrNotOwned
	}
	if notification.ReadAt != nil {
		return notification, nil
	}

	at := time.Now().UTC()
	updated, err := s.notifications.MarkRead(ctx, id, at)
	if err != nil {
		return nil, err
	}
	if !updated {
		// Another caller marked it between our read and write; return the
		// row with the timestamp that won.
		return s.notifications.GetByID(ctx, id)
	}
	notification.ReadAt = &at
	return notification, nil
}

// MarkAllRead marks every unread notification created at or before the
// call's snapshot timestamp. Notifications created mid-call stay unread.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	now := time.Now().UTC()
	return s.notifications.MarkAllReadBefore(ctx, userID, now, now)
}

// UnreadFor returns the user's unread notifications, newest first.
func (s *NotificationService) UnreadFor(ctx context.Context, userID uint) ([]models.Notification, error) {
	return s.notifications.UnreadFor(ctx, userID)
}

// AllFor returns one page of the user's notifications, newest first, plus the
// total count.
func (s *NotificationService) AllFor(ctx context.Context, userID uint, page, limit int) ([]models.Notification, int64, error) {
	return s.notifications.AllFor(ctx, userID, page, limit)
}

// UnreadCount returns how many of the user's notifications are unread.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.notifications.UnreadCount(ctx, userID)
}
