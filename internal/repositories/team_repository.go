package repositories

import (
	"errors"

	"github.com/anonto42/collabhub/backend/internal/models"
	"gorm.io/gorm"
)

// TeamRepository defines the interface for team data operations
type TeamRepository interface {
	CreateTeam(team *models.Team) error
	GetTeamByID(id uint) (*models.Team, error)
	DeleteTeam(id uint) error
}

// PostgresTeamRepository implements TeamRepository for PostgreSQL
type PostgresTeamRepository struct {
	db *gorm.DB
}

// NewPostgresTeamRepository creates a new PostgresTeamRepository
func NewPostgresTeamRepository(db *gorm.DB) *PostgresTeamRepository {
	return &PostgresTeamRepository{db: db}
}

// CreateTeam creates a new team in PostgreSQL
func (r *PostgresTeamRepository) CreateTeam(team *models.Team) error {
	return r.db.Create(team).Error
}

// GetTeamByID retrieves a team by ID from PostgreSQL
func (r *PostgresTeamRepository) GetTeamByID(id uint) (*models.Team, error) {
	var team models.Team
	if err := r.db.First(&team, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &team, nil
}

// DeleteTeam deletes a team by ID from PostgreSQL
func (r *PostgresTeamRepository) DeleteTeam(id uint) error {
	return r.db.Delete(&models.Team{}, id).Error
}
