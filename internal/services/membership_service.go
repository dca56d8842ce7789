package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/anonto42/collabhub/backend/internal/models"
	"github.com/anonto42/collabhub/backend/internal/repositories"
)

// Notifier creates and retracts notifications on behalf of domain actions.
// Satisfied by NotificationService; membership transitions use it to fan out
// invitation, join, rejection and departure events.
type Notifier interface {
	Create(ctx context.Context, userID uint, content string, notificationType models.NotificationType, entityID string, action json.RawMessage) (*models.Notification, error)
	Retract(ctx context.Context, userID uint, entityID string, notificationType models.NotificationType) error
}

// MembershipService governs a user's relationship to a team:
// [no row] --invite--> PENDING --respond(accept)--> ACCEPTED --remove--> [no row],
// PENDING --respond(reject)--> REJECTED (terminal until a fresh invite).
// Every transition holds the team's lock stripe so the guard check and the
// write are atomic per team; in particular a team can never drop below one
// ACCEPTED LEAD.
type MembershipService struct {
	memberships repositories.MembershipRepository
	teams       repositories.TeamRepository
	notifier    Notifier
	locks       keyMutex
}

// NewMembershipService creates a new MembershipService
func NewMembershipService(memberships repositories.MembershipRepository, teams repositories.TeamRepository, notifier Notifier) *MembershipService {
	return &MembershipService{memberships: memberships, teams: teams, notifier: notifier}
}

func teamKey(teamID uint) string {
	return "team|" + strconv.FormatUint(uint64(teamID), 10)
}

func teamEntityID(teamID uint) string {
	return strconv.FormatUint(uint64(teamID), 10)
}

// AddFounder records the team creator as an ACCEPTED LEAD. Called once when
// a team is created so the last-lead invariant holds from the start.
func (s *MembershipService) AddFounder(ctx context.Context, teamID, userID uint) error {
	mu := s.locks.stripe(teamKey(teamID))
	mu.Lock()
	defer mu.Unlock()

	now := time.Now().UTC()
	created, err := s.memberships.CreateIfAbsent(ctx, &models.Membership{
		TeamID:      teamID,
		UserID:      userID,
		Status:      models.MembershipAccepted,
		Role:        models.RoleLead,
		InvitedAt:   now,
		RespondedAt: &now,
	})
	if err != nil {
		return err
	}
	if !created {
		return fmt.Errorf("founder membership already exists for team %d user %d", teamID, userID)
	}
	return nil
}

// Invite inserts a PENDING membership and notifies the invitee with an
// Accept/Reject action payload. Returns false when a row for (team, user)
// already exists; the caller must remove or resolve it first.
func (s *MembershipService) Invite(ctx context.Context, teamID, userID uint, role models.MembershipRole) (bool, error) {
	mu := s.locks.stripe(teamKey(teamID))
	mu.Lock()
	defer mu.Unlock()

	team, err := s.teams.GetTeamByID(teamID)
	if err != nil {
		return false, err
	}

	created, err := s.memberships.CreateIfAbsent(ctx, &models.Membership{
		TeamID:    teamID,
		UserID:    userID,
		Status:    models.MembershipPending,
		Role:      role,
		InvitedAt: time.Now().UTC(),
	})
	if err != nil || !created {
		return false, err
	}

	content := fmt.Sprintf("You have been invited to join team %q as %s", team.Name, role)
	if _, err := s.notifier.Create(ctx, userID, content, models.NotificationTeamInvitation, teamEntityID(teamID), invitationAction(teamID)); err != nil {
		return true, err
	}
	return true, nil
}

// invitationAction builds the Accept/Reject follow-up payload attached to a
// TEAM_INVITATION notification. The service stores and forwards it opaquely;
// only the client interprets it.
func invitationAction(teamID uint) json.RawMessage {
	endpoint := fmt.Sprintf("/api/v1/teams/%d/invitations/respond", teamID)
	entries := []models.ActionEntry{
		{Label: "Accept", Method: http.MethodPut, Endpoint: endpoint, Payload: json.RawMessage(`{"response":"accept"}`)},
		{Label: "Reject", Method: http.MethodPut, Endpoint: endpoint, Payload: json.RawMessage(`{"response":"reject"}`)},
	}
	payload, _ := json.Marshal(entries)
	return payload
}

// Respond transitions a PENDING membership to ACCEPTED or REJECTED, retracts
// the superseded invitation notification, and notifies the team's leads.
// Errors with ErrMembershipNotPending when the row is in any other state and
// with repositories.ErrNotFound when no row exists.
func (s *MembershipService) Respond(ctx context.Context, teamID, userID uint, accepted bool) (*models.Membership, error) {
	mu := s.locks.stripe(teamKey(teamID))
	mu.Lock()
	defer mu.Unlock()

	membership, err := s.memberships.Get(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}
	if membership.Status != models.MembershipPending {
		return nil, ErrMembershipNotPending
	}

	now := time.Now().UTC()
	membership.RespondedAt = &now
	if accepted {
		membership.Status = models.MembershipAccepted
	} else {
		membership.Status = models.MembershipRejected
	}
	if err := s.memberships.Update(ctx, membership); err != nil {
		return nil, err
	}

	entityID := teamEntityID(teamID)
	if err := s.notifier.Retract(ctx, userID, entityID, models.NotificationTeamInvitation); err != nil {
		return nil, err
	}

	team, err := s.teams.GetTeamByID(teamID)
	if err != nil {
		return nil, err
	}
	notificationType := models.NotificationTeamJoined
	content := fmt.Sprintf("A new member joined team %q", team.Name)
	if !accepted {
		notificationType = models.NotificationTeamRejected
		content = fmt.Sprintf("An invitation to team %q was declined", team.Name)
	}
	if err := s.notifyLeads(ctx, teamID, userID, content, notificationType); err != nil {
		return nil, err
	}

	return membership, nil
}

// Remove deletes the membership row. Rejects with ErrLastLead when the row
// is the team's only ACCEPTED LEAD; the row is left unchanged in that case.
func (s *MembershipService) Remove(ctx context.Context, teamID, userID uint) (bool, error) {
	mu := s.locks.stripe(teamKey(teamID))
	mu.Lock()
	defer mu.Unlock()

	membership, err := s.memberships.Get(ctx, teamID, userID)
	if err != nil {
		return false, err
	}
	if membership.Role == models.RoleLead && membership.Status == models.MembershipAccepted {
		count, err := s.memberships.CountAcceptedLeads(ctx, teamID)
		if err != nil {
			return false, err
		}
		if count <= 1 {
			return false, ErrLastLead
		}
	}

	deleted, err := s.memberships.Delete(ctx, teamID, userID)
	if err != nil || !deleted {
		return deleted, err
	}

	if membership.Status == models.MembershipAccepted {
		team, err := s.teams.GetTeamByID(teamID)
		if err != nil {
			return true, err
		}
		content := fmt.Sprintf("A member left team %q", team.Name)
		if err := s.notifyLeads(ctx, teamID, userID, content, models.NotificationTeamLeft); err != nil {
			return true, err
		}
	}
	return true, nil
}

// ChangeRole mutates an ACCEPTED member's role in place, with the same
// last-lead guard as Remove when demoting the only ACCEPTED LEAD. Rows in any
// other state are refused with ErrMembershipNotAccepted; a pending invitee's
// role is fixed until they respond.
func (s *MembershipService) ChangeRole(ctx context.Context, teamID, userID uint, newRole models.MembershipRole) error {
	mu := s.locks.stripe(teamKey(teamID))
	mu.Lock()
	defer mu.Unlock()

	membership, err := s.memberships.Get(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if membership.Status != models.MembershipAccepted {
		return ErrMembershipNotAccepted
	}
	if membership.Role == models.RoleLead && newRole != models.RoleLead {
		count, err := s.memberships.CountAcceptedLeads(ctx, teamID)
		if err != nil {
			return err
		}
		if count <= 1 {
			return ErrLastLead
		}
	}

	membership.Role = newRole
	return s.memberships.Update(ctx, membership)
}

// IsMember reports whether the user holds an ACCEPTED membership in the team.
func (s *MembershipService) IsMember(ctx context.Context, teamID, userID uint) (bool, error) {
	membership, err := s.memberships.Get(ctx, teamID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return membership.Status == models.MembershipAccepted, nil
}

// RoleOf returns the user's role in the team. The second return value is
// false when the user holds no ACCEPTED membership.
func (s *MembershipService) RoleOf(ctx context.Context, teamID, userID uint) (models.MembershipRole, bool, error) {
	membership, err := s.memberships.Get(ctx, teamID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	if membership.Status != models.MembershipAccepted {
		return "", false, nil
	}
	return membership.Role, true, nil
}

// Members returns every membership row for the team.
func (s *MembershipService) Members(ctx context.Context, teamID uint) ([]models.Membership, error) {
	return s.memberships.ListByTeam(ctx, teamID)
}

func (s *MembershipService) notifyLeads(ctx context.Context, teamID, actorID uint, content string, notificationType models.NotificationType) error {
	leads, err := s.memberships.ListAcceptedLeads(ctx, teamID)
	if err != nil {
		return err
	}
	entityID := teamEntityID(teamID)
	for _, lead := range leads {
		if lead.UserID == actorID {
			continue
		}
		if _, err := s.notifier.Create(ctx, lead.UserID, content, notificationType, entityID, nil); err != nil {
			return err
		}
	}
	return nil
}
