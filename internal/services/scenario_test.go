package services

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/collabhub/backend/internal/broker"
	"github.com/anonto42/collabhub/backend/internal/models"
	"github.com/anonto42/collabhub/backend/internal/repositories"
	"github.com/anonto42/collabhub/backend/internal/stream"
)

// Exercises the full flow a connected client sees: an invitation arrives on
// the live stream, the invitee accepts, and engagement toggles keep counters
// consistent throughout.
func TestLiveStreamSeesMembershipFlow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := broker.New(8)
	notifications := repositories.NewInMemoryNotificationRepository()
	notifier := NewNotificationService(notifications, bus)

	memberships := repositories.NewInMemoryMembershipRepository()
	teams := repositories.NewInMemoryTeamRepository()
	membershipService := NewMembershipService(memberships, teams, notifier)

	engagements := repositories.NewInMemoryEngagementRepository()
	counters := newCounterRecorder()
	engagementService := NewEngagementService(engagements, counters)

	const owner, invitee uint = 1, 2

	team := &models.Team{Name: "platform", OwnerID: owner}
	if err := teams.CreateTeam(team); err != nil {
		t.Fatalf("create team: %v", err)
	}
	if err := membershipService.AddFounder(ctx, team.ID, owner); err != nil {
		t.Fatalf("add founder: %v", err)
	}

	// The invitee has an open notification stream.
	events := stream.New(bus, invitee, time.Hour).Run(ctx)
	if got := <-events; got.Content != "connected" {
		t.Fatalf("first stream event = %q, want connected", got.Content)
	}

	// The invitee likes, then unlikes, the owner's project.
	if result, err := engagementService.Toggle(ctx, invitee, "p1"); err != nil || !result.Active {
		t.Fatalf("toggle on = %+v, %v", result, err)
	}
	if result, err := engagementService.Toggle(ctx, invitee, "p1"); err != nil || result.Active {
		t.Fatalf("toggle off = %+v, %v", result, err)
	}
	if got := counters.likeCount("p1"); got != 0 {
		t.Fatalf("like count = %d, want 0 after like and unlike", got)
	}

	// The owner invites; the invitation reaches the open stream.
	created, err := membershipService.Invite(ctx, team.ID, invitee, models.RoleModify)
	if err != nil || !created {
		t.Fatalf("invite = %v, %v", created, err)
	}

	select {
	case got := <-events:
		if got.Type != models.NotificationTeamInvitation {
			t.Fatalf("stream event type = %s, want TEAM_INVITATION", got.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("invitation never reached the stream")
	}

	// Accepting promotes the membership and retracts the stored invitation.
	membership, err := membershipService.Respond(ctx, team.ID, invitee, true)
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if membership.Status != models.MembershipAccepted {
		t.Fatalf("status = %s, want ACCEPTED", membership.Status)
	}

	unread, err := notifier.UnreadFor(ctx, invitee)
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	if len(unread) != 0 {
		t.Fatalf("invitee unread = %+v, want none after retraction", unread)
	}

	isMember, err := membershipService.IsMember(ctx, team.ID, invitee)
	if err != nil {
		t.Fatalf("is member: %v", err)
	}
	if !isMember {
		t.Fatal("invitee not a member after accepting")
	}
}
