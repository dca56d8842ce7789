package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/anonto42/collabhub/backend/internal/models"
)

// InMemoryEngagementRepository is a mutex-guarded in-memory implementation of
// EngagementRepository. It backs unit tests and local development without a
// database. Rows are held in a slice so tests can seed duplicate rows and
// exercise the self-healing read path.
type InMemoryEngagementRepository struct {
	mu     sync.Mutex
	nextID uint
	rows   []models.Engagement
}

// NewInMemoryEngagementRepository returns an empty in-memory engagement repository.
func NewInMemoryEngagementRepository() *InMemoryEngagementRepository {
	return &InMemoryEngagementRepository{nextID: 1}
}

// CreateIfAbsent inserts the engagement unless a row with the same key exists.
func (r *InMemoryEngagementRepository) CreateIfAbsent(ctx context.Context, engagement *models.Engagement) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.UserID == engagement.UserID && row.ProjectID == engagement.ProjectID && row.Kind == engagement.Kind {
			return false, nil
		}
	}
	engagement.ID = r.nextID
	r.nextID++
	if engagement.CreatedAt.IsZero() {
		engagement.CreatedAt = time.Now().UTC()
	}
	r.rows = append(r.rows, *engagement)
	return true, nil
}

// Delete removes all rows for the key and reports whether anything was deleted.
func (r *InMemoryEngagementRepository) Delete(ctx context.Context, userID uint, projectID string, kind models.EngagementKind) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	deleted := false
	for _, row := range r.rows {
		if row.UserID == userID && row.ProjectID == projectID && row.Kind == kind {
			deleted = true
			continue
		}
		kept = append(kept, row)
	}
	r.rows = kept
	return deleted, nil
}

// DeleteByID removes a single row by primary key.
func (r *InMemoryEngagementRepository) DeleteByID(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, row := range r.rows {
		if row.ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

// Find returns every row for the key, oldest first.
func (r *InMemoryEngagementRepository) Find(ctx context.Context, userID uint, projectID string, kind models.EngagementKind) ([]models.Engagement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Engagement
	for _, row := range r.rows {
		if row.UserID == userID && row.ProjectID == projectID && row.Kind == kind {
			out = append(out, row)
		}
	}
	return out, nil
}

// ListUserIDsByProject returns the distinct users holding an engagement of
// the given kind on the project.
func (r *InMemoryEngagementRepository) ListUserIDsByProject(ctx context.Context, projectID string, kind models.EngagementKind) ([]uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[uint]bool)
	var out []uint
	for _, row := range r.rows {
		if row.ProjectID == projectID && row.Kind == kind && !seen[row.UserID] {
			seen[row.UserID] = true
			out = append(out, row.UserID)
		}
	}
	return out, nil
}

// Insert stores a row unconditionally, bypassing the uniqueness check.
// Tests use it to reproduce the duplicate rows a lost race can leave behind.
func (r *InMemoryEngagementRepository) Insert(engagement models.Engagement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if engagement.ID == 0 {
		engagement.ID = r.nextID
		r.nextID++
	}
	if engagement.CreatedAt.IsZero() {
		engagement.CreatedAt = time.Now().UTC()
	}
	r.rows = append(r.rows, engagement)
}
