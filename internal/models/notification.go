package models

import (
	"encoding/json"
	"time"
)

// NotificationType is a closed enumeration of notification categories.
type NotificationType string

const (
	NotificationProjectComment  NotificationType = "PROJECT_COMMENT"
	NotificationProjectLiked    NotificationType = "PROJECT_LIKED"
	NotificationProjectDeleted  NotificationType = "PROJECT_DELETED"
	NotificationProjectRejected NotificationType = "PROJECT_REJECTED"
	NotificationTeamInvitation  NotificationType = "TEAM_INVITATION"
	NotificationTeamJoined      NotificationType = "TEAM_JOINED"
	NotificationTeamRejected    NotificationType = "TEAM_REJECTED"
	NotificationTeamLeft        NotificationType = "TEAM_LEFT"
	NotificationSystem          NotificationType = "SYSTEM"
)

// Notification represents one delivered-or-pending message to a user.
// ReadAt is monotonic: once set it is never cleared. Unread means ReadAt is null.
// Action is an opaque JSON payload describing follow-up actions (e.g. the
// Accept/Reject buttons on a team invitation); this service stores and
// forwards it without interpreting its structure.
type Notification struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	UserID    uint             `json:"user_id" gorm:"index"` // recipient
	Content   string           `json:"content"`
	Type      NotificationType `json:"type" gorm:"size:30;index"`
	EntityID  string           `json:"entity_id"` // related project/team id, as text
	Action    json.RawMessage  `json:"action,omitempty" gorm:"type:jsonb"`
	CreatedAt time.Time        `json:"created_at" gorm:"index"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
}

// ActionEntry is one follow-up action offered alongside a notification,
// e.g. {"label":"Accept","method":"PUT","endpoint":"/api/v1/teams/7/invitations/respond","payload":{...}}.
type ActionEntry struct {
	Label    string          `json:"label"`
	Method   string          `json:"method"`
	Endpoint string          `json:"endpoint"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}
