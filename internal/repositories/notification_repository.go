package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/collabhub/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations.
//
// MarkRead is a conditional update (read_at must still be null) so repeated
// or racing calls never move an existing read timestamp.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id uint) (*models.Notification, error)
	MarkRead(ctx context.Context, id uint, at time.Time) (bool, error)
	MarkAllReadBefore(ctx context.Context, userID uint, cutoff, at time.Time) (int64, error)
	DeleteByUserEntityAndType(ctx context.Context, userID uint, entityID string, notificationType models.NotificationType) error
	UnreadFor(ctx context.Context, userID uint) ([]models.Notification, error)
	AllFor(ctx context.Context, userID uint, page, limit int) ([]models.Notification, int64, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

// NewPostgresNotificationRepository creates a NotificationRepository backed by PostgreSQL.
func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *postgresNotificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.WithContext(ctx).First(&notification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &notification, nil
}

// MarkRead sets read_at only when it is still null. Returns false when the
// row was already read (or does not exist) so the caller can re-read the
// original timestamp.
func (r *postgresNotificationRepository) MarkRead(ctx context.Context, id uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND read_at IS NULL", id).
		Update("read_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkAllReadBefore marks every unread notification created at or before the
// cutoff. Rows created after the cutoff (mid-call) stay unread.
func (r *postgresNotificationRepository) MarkAllReadBefore(ctx context.Context, userID uint, cutoff, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL AND created_at <= ?", userID, cutoff).
		Update("read_at", at)
	return res.RowsAffected, res.Error
}

func (r *postgresNotificationRepository) DeleteByUserEntityAndType(ctx context.Context, userID uint, entityID string, notificationType models.NotificationType) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND entity_id = ? AND type = ?", userID, entityID, notificationType).
		Delete(&models.Notification{}).Error
}

func (r *postgresNotificationRepository) UnreadFor(ctx context.Context, userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND read_at IS NULL", userID).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

func (r *postgresNotificationRepository) AllFor(ctx context.Context, userID uint, page, limit int) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error

	return notifications, total, err
}

func (r *postgresNotificationRepository) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}
