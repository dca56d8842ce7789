package models

import "time"

// EngagementKind enumerates the ways a user can engage with a project.
type EngagementKind string

const (
	EngagementLike  EngagementKind = "LIKE"
	EngagementShare EngagementKind = "SHARE"
	EngagementView  EngagementKind = "VIEW"
)

// Engagement represents one interaction a user has with a project.
// The unique index on (user_id, project_id, kind) backs the dedup invariant:
// a second insert for the same key is rejected by the database.
type Engagement struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"uniqueIndex:idx_engagement_key"`
	ProjectID string         `json:"project_id" gorm:"uniqueIndex:idx_engagement_key"` // MongoDB ObjectID as string
	Kind      EngagementKind `json:"kind" gorm:"size:10;uniqueIndex:idx_engagement_key"`
	CreatedAt time.Time      `json:"created_at"`
}

// EngagementResult reports the outcome of a toggle or record-once call.
// Active is meaningful for LIKE toggles, Created for SHARE/VIEW records.
type EngagementResult struct {
	Active  bool `json:"active"`
	Created bool `json:"created"`
}

// EngagementStatus reports a user's current engagement state for UI rendering.
type EngagementStatus struct {
	Liked  bool `json:"liked"`
	Shared bool `json:"shared"`
}
