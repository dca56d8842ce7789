package models

import "time"

// MembershipStatus is the lifecycle state of a team invitation.
type MembershipStatus string

const (
	MembershipPending  MembershipStatus = "PENDING"
	MembershipAccepted MembershipStatus = "ACCEPTED"
	MembershipRejected MembershipStatus = "REJECTED"
)

// MembershipRole is the permission level a member holds within a team.
type MembershipRole string

const (
	RoleLead   MembershipRole = "LEAD"
	RoleModify MembershipRole = "MODIFY"
	RoleRead   MembershipRole = "READ"
)

// Membership represents a user's relationship to a team.
// (TeamID, UserID) is the composite primary key; a fresh invite after a
// rejection or removal creates a new row for the same pair.
type Membership struct {
	TeamID      uint             `json:"team_id" gorm:"primaryKey;autoIncrement:false"`
	UserID      uint             `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	Status      MembershipStatus `json:"status" gorm:"size:10"`
	Role        MembershipRole   `json:"role" gorm:"size:10"`
	InvitedAt   time.Time        `json:"invited_at"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`
}

// InviteMemberRequest defines the request body for inviting a user to a team
type InviteMemberRequest struct {
	UserID uint   `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required,oneof=LEAD MODIFY READ"`
}

// RespondInvitationRequest defines the request body for accepting/rejecting an invitation
type RespondInvitationRequest struct {
	Response string `json:"response" validate:"required,oneof=accept reject"`
}

// ChangeRoleRequest defines the request body for changing a member's role
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=LEAD MODIFY READ"`
}
