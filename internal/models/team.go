package models

import "gorm.io/gorm"

// Team represents a collaboration team
type Team struct {
	gorm.Model
	Name    string `json:"name"`
	OwnerID uint   `json:"owner_id" gorm:"index"` // user who created the team
}

// CreateTeamRequest defines the request body for creating a new team
type CreateTeamRequest struct {
	Name string `json:"name" validate:"required,min=2,max=80"`
}
