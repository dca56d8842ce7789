package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/collabhub/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MembershipRepository defines the interface for team membership data operations.
//
// CreateIfAbsent is conditional on the composite (team_id, user_id) primary
// key so two concurrent invites for the same pair cannot both insert a row.
type MembershipRepository interface {
	CreateIfAbsent(ctx context.Context, membership *models.Membership) (bool, error)
	Get(ctx context.Context, teamID, userID uint) (*models.Membership, error)
	Update(ctx context.Context, membership *models.Membership) error
	Delete(ctx context.Context, teamID, userID uint) (bool, error)
	CountAcceptedLeads(ctx context.Context, teamID uint) (int64, error)
	ListByTeam(ctx context.Context, teamID uint) ([]models.Membership, error)
	ListAcceptedLeads(ctx context.Context, teamID uint) ([]models.Membership, error)
}

// PostgresMembershipRepository implements MembershipRepository for PostgreSQL
type PostgresMembershipRepository struct {
	db *gorm.DB
}

// NewPostgresMembershipRepository creates a new PostgresMembershipRepository
func NewPostgresMembershipRepository(db *gorm.DB) *PostgresMembershipRepository {
	return &PostgresMembershipRepository{db: db}
}

// CreateIfAbsent inserts the membership unless a row for (team, user) exists.
func (r *PostgresMembershipRepository) CreateIfAbsent(ctx context.Context, membership *models.Membership) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(membership)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Get retrieves the membership row for (team, user).
func (r *PostgresMembershipRepository) Get(ctx context.Context, teamID, userID uint) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &membership, nil
}

// Update saves the full membership row.
func (r *PostgresMembershipRepository) Update(ctx context.Context, membership *models.Membership) error {
	return r.db.WithContext(ctx).Save(membership).Error
}

// Delete removes the membership row and reports whether it existed.
func (r *PostgresMembershipRepository) Delete(ctx context.Context, teamID, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&models.Membership{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CountAcceptedLeads counts members with role LEAD and status ACCEPTED.
func (r *PostgresMembershipRepository) CountAcceptedLeads(ctx context.Context, teamID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Membership{}).
		Where("team_id = ? AND role = ? AND status = ?", teamID, models.RoleLead, models.MembershipAccepted).
		Count(&count).Error
	return count, err
}

// ListByTeam returns all membership rows for a team.
func (r *PostgresMembershipRepository) ListByTeam(ctx context.Context, teamID uint) ([]models.Membership, error) {
	var memberships []models.Membership
	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("invited_at ASC").
		Find(&memberships).Error
	return memberships, err
}

// ListAcceptedLeads returns the team's members with role LEAD and status ACCEPTED.
func (r *PostgresMembershipRepository) ListAcceptedLeads(ctx context.Context, teamID uint) ([]models.Membership, error) {
	var memberships []models.Membership
	err := r.db.WithContext(ctx).
		Where("team_id = ? AND role = ? AND status = ?", teamID, models.RoleLead, models.MembershipAccepted).
		Find(&memberships).Error
	return memberships, err
}
