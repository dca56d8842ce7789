package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/collabhub/backend/internal/models"
)

// InMemoryNotificationRepository is a mutex-guarded in-memory implementation
// of NotificationRepository for tests and local development.
type InMemoryNotificationRepository struct {
	mu     sync.Mutex
	nextID uint
	rows   []models.Notification
}

// NewInMemoryNotificationRepository returns an empty in-memory notification repository.
func NewInMemoryNotificationRepository() *InMemoryNotificationRepository {
	return &InMemoryNotificationRepository{nextID: 1}
}

func (r *InMemoryNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	notification.ID = r.nextID
	r.nextID++
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	r.rows = append(r.rows, *notification)
	return nil
}

func (r *InMemoryNotificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ID == id {
			copied := row
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (r *InMemoryNotificationRepository) MarkRead(ctx context.Context, id uint, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id && r.rows[i].ReadAt == nil {
			stamped := at
			r.rows[i].ReadAt = &stamped
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryNotificationRepository) MarkAllReadBefore(ctx context.Context, userID uint, cutoff, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var affected int64
	for i := range r.rows {
		if r.rows[i].UserID == userID && r.rows[i].ReadAt == nil && !r.rows[i].CreatedAt.After(cutoff) {
			stamped := at
			r.rows[i].ReadAt = &stamped
			affected++
		}
	}
	return affected, nil
}

func (r *InMemoryNotificationRepository) DeleteByUserEntityAndType(ctx context.Context, userID uint, entityID string, notificationType models.NotificationType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.UserID == userID && row.EntityID == entityID && row.Type == notificationType {
			continue
		}
		kept = append(kept, row)
	}
	r.rows = kept
	return nil
}

func (r *InMemoryNotificationRepository) UnreadFor(ctx context.Context, userID uint) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, row := range r.rows {
		if row.UserID == userID && row.ReadAt == nil {
			out = append(out, row)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *InMemoryNotificationRepository) AllFor(ctx context.Context, userID uint, page, limit int) ([]models.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, row := range r.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	sortNewestFirst(out)
	total := int64(len(out))

	offset := (page - 1) * limit
	if offset >= len(out) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (r *InMemoryNotificationRepository) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, row := range r.rows {
		if row.UserID == userID && row.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func sortNewestFirst(rows []models.Notification) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].ID > rows[j].ID
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
}
