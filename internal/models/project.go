package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project represents a project document (MongoDB).
// The total_* counters are derived from engagement and comment writes and are
// mutated atomically with $inc in the same logical operation that created or
// removed the corresponding record.
type Project struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OwnerID       uint               `json:"owner_id" bson:"owner_id"`
	Name          string             `json:"name" bson:"name"`
	Description   string             `json:"description" bson:"description"`
	TotalLikes    int64              `json:"total_likes" bson:"total_likes"`
	TotalShares   int64              `json:"total_shares" bson:"total_shares"`
	TotalViews    int64              `json:"total_views" bson:"total_views"`
	TotalComments int64              `json:"total_comments" bson:"total_comments"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreateProjectRequest defines the request body for creating a new project
type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=2000"`
}
