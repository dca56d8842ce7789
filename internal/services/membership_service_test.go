package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/anonto42/collabhub/backend/internal/broker"
	"github.com/anonto42/collabhub/backend/internal/models"
	"github.com/anonto42/collabhub/backend/internal/repositories"
)

type membershipFixture struct {
	memberships   *repositories.InMemoryMembershipRepository
	teams         *repositories.InMemoryTeamRepository
	notifications *repositories.InMemoryNotificationRepository
	service       *MembershipService
	team          *models.Team
}

const founderID uint = 1

func newMembershipFixture(t *testing.T) *membershipFixture {
	t.Helper()
	memberships := repositories.NewInMemoryMembershipRepository()
	teams := repositories.NewInMemoryTeamRepository()
	notifications := repositories.NewInMemoryNotificationRepository()
	notifier := NewNotificationService(notifications, broker.New(4))
	service := NewMembershipService(memberships, teams, notifier)

	team := &models.Team{Name: "core", OwnerID: founderID}
	if err := teams.CreateTeam(team); err != nil {
		t.Fatalf("create team: %v", err)
	}
	if err := service.AddFounder(context.Background(), team.ID, founderID); err != nil {
		t.Fatalf("add founder: %v", err)
	}
	return &membershipFixture{
		memberships:   memberships,
		teams:         teams,
		notifications: notifications,
		service:       service,
		team:          team,
	}
}

func (f *membershipFixture) invite(t *testing.T, userID uint, role models.MembershipRole) {
	t.Helper()
	created, err := f.service.Invite(context.Background(), f.team.ID, userID, role)
	if err != nil {
		t.Fatalf("invite user %d: %v", userID, err)
	}
	if !created {
		t.Fatalf("invite user %d: membership already exists", userID)
	}
}

func TestFounderIsAcceptedLead(t *testing.T) {
	f := newMembershipFixture(t)

	role, ok, err := f.service.RoleOf(context.Background(), f.team.ID, founderID)
	if err != nil {
		t.Fatalf("role of founder: %v", err)
	}
	if !ok || role != models.RoleLead {
		t.Fatalf("founder role = %q ok=%v, want LEAD", role, ok)
	}
}

func TestInviteCreatesPendingAndNotifies(t *testing.T) {
	f := newMembershipFixture(t)
	ctx := context.Background()

	f.invite(t, 2, models.RoleModify)

	membership, err := f.memberships.Get(ctx, f.team.ID, 2)
	if err != nil {
		t.Fatalf("get membership: %v", err)
	}
	if membership.Status != models.MembershipPending {
		t.Fatalf("status = %s, want PENDING", membership.Status)
	}

	// A pending invitee is not yet a member.
	isMember, err := f.service.IsMember(ctx, f.team.ID, 2)
	if err != nil {
		t.Fatalf("is member: %v", err)
	}
	if isMember {
		t.Fatal("pending invitee reported as member")
	}

	unread, err := f.notifications.UnreadFor(ctx, 2)
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	if len(unread) != 1 || unread[0].Type != models.NotificationTeamInvitation {
		t.Fatalf("invitee notifications = %+v, want one TEAM_INVITATION", unread)
	}

	var entries []models.ActionEntry
	if err := json.Unmarshal(unread[0].Action, &entries); err != nil {
		t.Fatalf("unmarshal action payload: %v", err)
	}
	if len(entries) != 2 || entries[0].Label != "Accept" || entries[1].Label != "Reject" {
		t.Fatalf("action entries = %+v, want Accept and Reject", entries)
	}
}

func TestInviteDuplicateReturnsFalse(t *testing.T) {
	f := newMembershipFixture(t)

	f.invite(t, 2, models.RoleRead)

	created, err := f.service.Invite(context.Background(), f.team.ID, 2, models.RoleRead)
	if err != nil {
		t.Fatalf("second invite: %v", err)
	}
	if created {
		t.Fatal("second invite reported created")
	}
}

func TestAcceptPromotesAndRetractsInvitation(t *testing.T) {
	f := newMembershipFixture(t)
	ctx := context.Background()

	f.invite(t, 2, models.RoleModify)

	membership, err := f.service.Respond(ctx, f.team.ID, 2, true)
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if membership.Status != models.MembershipAccepted || membership.RespondedAt == nil {
		t.Fatalf("membership = %+v, want ACCEPTED with response time", membership)
	}

	// The invitation notification is retracted once resolved.
	unread, err := f.notifications.UnreadFor(ctx, 2)
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	for _, n := range unread {
		if n.Type == models.NotificationTeamInvitation {
			t.Fatal("invitation notification still present after response")
		}
	}

	// The founder learns of the new member.
	founderUnread, err := f.notifications.UnreadFor(ctx, founderID)
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	if len(founderUnread) != 1 || founderUnread[0].Type != models.NotificationTeamJoined {
		t.Fatalf("founder notifications = %+v, want one TEAM_JOINED", founderUnread)
	}
}

func TestRejectIsTerminalUntilReinvited(t *testing.T) {
	f := newMembershipFixture(t)
	ctx := context.Background()

	f.invite(t, 2, models.RoleRead)

	membership, err := f.service.Respond(ctx, f.team.ID, 2, false)
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if membership.Status != models.MembershipRejected {
		t.Fatalf("status = %s, want REJECTED", membership.Status)
	}

	// A second response is refused.
	if _, err := f.service.Respond(ctx, f.team.ID, 2, true); !errors.Is(err, ErrMembershipNotPending) {
		t.Fatalf("second respond err = %v, want ErrMembershipNotPending", err)
	}

	// Removing the rejected row allows a fresh invite.
	if _, err := f.service.Remove(ctx, f.team.ID, 2); err != nil {
		t.Fatalf("remove rejected row: %v", err)
	}
	f.invite(t, 2, models.RoleRead)
}

func TestRespondWithoutInvitation(t *testing.T) {
	f := newMembershipFixture(t)

	_, err := f.service.Respond(context.Background(), f.team.ID, 99, true)
	if !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRemoveLastLeadRefused(t *testing.T) {
	f := newMembershipFixture(t)
	ctx := context.Background()

	_, err := f.service.Remove(ctx, f.team.ID, founderID)
	if !errors.Is(err, ErrLastLead) {
		t.Fatalf("err = %v, want ErrLastLead", err)
	}

	// The membership row is untouched by the refused removal.
	membership, err := f.memberships.Get(ctx, f.team.ID, founderID)
	if err != nil {
		t.Fatalf("get membership: %v", err)
	}
	if membership.Status != models.MembershipAccepted || membership.Role != models.RoleLead {
		t.Fatalf("membership = %+v, want unchanged ACCEPTED LEAD", membership)
	}
}

func TestDemoteLastLeadRefused(t *testing.T) {
	f := newMembershipFixture(t)

	err := f.service.ChangeRole(context.Background(), f.team.ID, founderID, models.RoleRead)
	if !errors.Is(err, ErrLastLead) {
		t.Fatalf("err = %v, want ErrLastLead", err)
	}
}

func TestChangeRoleRefusedForPendingRow(t *testing.T) {
	f := newMembershipFixture(t)
	ctx := context.Background()

	f.invite(t, 2, models.RoleRead)

	err := f.service.ChangeRole(ctx, f.team.ID, 2, models.RoleModify)
	if !errors.Is(err, ErrMembershipNotAccepted) {
		t.Fatalf("err = %v, want ErrMembershipNotAccepted", err)
	}

	// The pending row keeps the role it was invited with.
	membership, err := f.memberships.Get(ctx, f.team.ID, 2)
	if err != nil {
		t.Fatalf("get membership: %v", err)
	}
	if membership.Role != models.RoleRead || membership.Status != models.MembershipPending {
		t.Fatalf("membership = %+v, want unchanged PENDING READ", membership)
	}
}

func TestRemoveLeadAllowedWithSecondLead(t *testing.T) {
	f := newMembershipFixture(t)
	ctx := context.Background()

	f.invite(t, 2, models.RoleLead)
	if _, err := f.service.Respond(ctx, f.team.ID, 2, true); err != nil {
		t.Fatalf("respond: %v", err)
	}

	deleted, err := f.service.Remove(ctx, f.team.ID, founderID)
	if err != nil {
		t.Fatalf("remove founder with second lead: %v", err)
	}
	if !deleted {
		t.Fatal("remove reported nothing deleted")
	}

	// The remaining lead hears about the departure.
	unread, err := f.notifications.UnreadFor(ctx, 2)
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	var left int
	for _, n := range unread {
		if n.Type == models.NotificationTeamLeft {
			left++
		}
	}
	if left != 1 {
		t.Fatalf("TEAM_LEFT notifications = %d, want 1", left)
	}
}

func TestChangeRoleWithSecondLead(t *testing.T) {
	f := newMembershipFixture(t)
	ctx := context.Background()

	f.invite(t, 2, models.RoleLead)
	if _, err := f.service.Respond(ctx, f.team.ID, 2, true); err != nil {
		t.Fatalf("respond: %v", err)
	}

	if err := f.service.ChangeRole(ctx, f.team.ID, founderID, models.RoleModify); err != nil {
		t.Fatalf("demote founder with second lead: %v", err)
	}

	role, ok, err := f.service.RoleOf(ctx, f.team.ID, founderID)
	if err != nil {
		t.Fatalf("role of: %v", err)
	}
	if !ok || role != models.RoleModify {
		t.Fatalf("role = %q ok=%v, want MODIFY", role, ok)
	}
}
