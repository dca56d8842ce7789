package repositories

import (
	"sync"

	"github.com/anonto42/collabhub/backend/internal/models"
)

// InMemoryTeamRepository is a mutex-guarded in-memory implementation of
// TeamRepository for tests and local development.
type InMemoryTeamRepository struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]models.Team
}

// NewInMemoryTeamRepository returns an empty in-memory team repository.
func NewInMemoryTeamRepository() *InMemoryTeamRepository {
	return &InMemoryTeamRepository{nextID: 1, rows: make(map[uint]models.Team)}
}

// CreateTeam stores a new team and assigns its ID.
func (r *InMemoryTeamRepository) CreateTeam(team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	team.ID = r.nextID
	r.nextID++
	r.rows[team.ID] = *team
	return nil
}

// GetTeamByID retrieves a team by ID.
func (r *InMemoryTeamRepository) GetTeamByID(id uint) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	team, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := team
	return &copied, nil
}

// DeleteTeam removes a team by ID.
func (r *InMemoryTeamRepository) DeleteTeam(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}
