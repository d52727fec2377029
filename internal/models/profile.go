package models

import (
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	UUID      uuid.UUID
	UserUUID  uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	Nickname  string
	Image     string
}

// Patch for profile mutable fields. Nil field means "keep as is"
type ProfilePatch struct {
	Nickname *string
	Image    *string
}
