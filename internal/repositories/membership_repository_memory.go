package repositories

import (
	"context"
	"sort"
	"sync"

	"github.com/anonto42/collabhub/backend/internal/models"
)

type membershipKey struct {
	teamID uint
	userID uint
}

// InMemoryMembershipRepository is a mutex-guarded in-memory implementation of
// MembershipRepository for tests and local development.
type InMemoryMembershipRepository struct {
	mu   sync.Mutex
	rows map[membershipKey]models.Membership
}

// NewInMemoryMembershipRepository returns an empty in-memory membership repository.
func NewInMemoryMembershipRepository() *InMemoryMembershipRepository {
	return &InMemoryMembershipRepository{rows: make(map[membershipKey]models.Membership)}
}

// CreateIfAbsent inserts the membership unless a row for (team, user) exists.
func (r *InMemoryMembershipRepository) CreateIfAbsent(ctx context.Context, membership *models.Membership) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := membershipKey{membership.TeamID, membership.UserID}
	if _, exists := r.rows[key]; exists {
		return false, nil
	}
	r.rows[key] = *membership
	return true, nil
}

// Get retrieves the membership row for (team, user).
func (r *InMemoryMembershipRepository) Get(ctx context.Context, teamID, userID uint) (*models.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[membershipKey{teamID, userID}]
	if !ok {
		return nil, ErrNotFound
	}
	copied := row
	return &copied, nil
}

// Update saves the full membership row.
func (r *InMemoryMembershipRepository) Update(ctx context.Context, membership *models.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[membershipKey{membership.TeamID, membership.UserID}] = *membership
	return nil
}

// Delete removes the membership row and reports whether it existed.
func (r *InMemoryMembershipRepository) Delete(ctx context.Context, teamID, userID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := membershipKey{teamID, userID}
	if _, ok := r.rows[key]; !ok {
		return false, nil
	}
	delete(r.rows, key)
	return true, nil
}

// CountAcceptedLeads counts members with role LEAD and status ACCEPTED.
func (r *InMemoryMembershipRepository) CountAcceptedLeads(ctx context.Context, teamID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, row := range r.rows {
		if row.TeamID == teamID && row.Role == models.RoleLead && row.Status == models.MembershipAccepted {
			count++
		}
	}
	return count, nil
}

// ListByTeam returns all membership rows for a team, oldest invite first.
func (r *InMemoryMembershipRepository) ListByTeam(ctx context.Context, teamID uint) ([]models.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Membership
	for _, row := range r.rows {
		if row.TeamID == teamID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvitedAt.Before(out[j].InvitedAt) })
	return out, nil
}

// ListAcceptedLeads returns the team's members with role LEAD and status ACCEPTED.
func (r *InMemoryMembershipRepository) ListAcceptedLeads(ctx context.Context, teamID uint) ([]models.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Membership
	for _, row := range r.rows {
		if row.TeamID == teamID && row.Role == models.RoleLead && row.Status == models.MembershipAccepted {
			out = append(out, row)
		}
	}
	return out, nil
}
