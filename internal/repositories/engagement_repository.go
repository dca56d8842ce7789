package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/collabhub/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EngagementRepository defines the interface for engagement data operations.
//
// CreateIfAbsent is the single conditional write that backs the dedup
// invariant: it inserts the record only when no row exists for the same
// (user, project, kind) key and reports whether the insert happened.
type EngagementRepository interface {
	CreateIfAbsent(ctx context.Context, engagement *models.Engagement) (bool, error)
	Delete(ctx context.Context, userID uint, projectID string, kind models.EngagementKind) (bool, error)
	DeleteByID(ctx context.Context, id uint) error
	Find(ctx context.Context, userID uint, projectID string, kind models.EngagementKind) ([]models.Engagement, error)
	ListUserIDsByProject(ctx context.Context, projectID string, kind models.EngagementKind) ([]uint, error)
}

// PostgresEngagementRepository implements EngagementRepository for PostgreSQL
type PostgresEngagementRepository struct {
	db *gorm.DB
}

// NewPostgresEngagementRepository creates a new PostgresEngagementRepository
func NewPostgresEngagementRepository(db *gorm.DB) *PostgresEngagementRepository {
	return &PostgresEngagementRepository{db: db}
}

// CreateIfAbsent inserts the engagement unless a row with the same
// (user_id, project_id, kind) already exists. The unique index makes the
// insert conditional at the database, so two concurrent callers can never
// both create a row for the same key.
func (r *PostgresEngagementRepository) CreateIfAbsent(ctx context.Context, engagement *models.Engagement) (bool, error) {
	if engagement.CreatedAt.IsZero() {
		engagement.CreatedAt = time.Now().UTC()
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(engagement)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes all rows for the (user, project, kind) key and reports
// whether anything was deleted.
func (r *PostgresEngagementRepository) Delete(ctx context.Context, userID uint, projectID string, kind models.EngagementKind) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ? AND kind = ?", userID, projectID, kind).
		Delete(&models.Engagement{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteByID removes a single engagement row by primary key.
func (r *PostgresEngagementRepository) DeleteByID(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Engagement{}, id).Error
}

// Find returns every row for the (user, project, kind) key, oldest first.
// More than one result is an anomaly the caller is expected to heal.
func (r *PostgresEngagementRepository) Find(ctx context.Context, userID uint, projectID string, kind models.EngagementKind) ([]models.Engagement, error) {
	var engagements []models.Engagement
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ? AND kind = ?", userID, projectID, kind).
		Order("created_at ASC").
		Find(&engagements).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return engagements, nil
}

// ListUserIDsByProject returns the distinct users holding an engagement of
// the given kind on the project.
func (r *PostgresEngagementRepository) ListUserIDsByProject(ctx context.Context, projectID string, kind models.EngagementKind) ([]uint, error) {
	var userIDs []uint
	err := r.db.WithContext(ctx).Model(&models.Engagement{}).
		Where("project_id = ? AND kind = ?", projectID, kind).
		Distinct().
		Pluck("user_id", &userIDs).Error
	return userIDs, err
}
