package models

import (
	"time"

	"github.com/google/uuid"
)

type Space struct {
	UUID      uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string
	Icon      string
}

// Patch for space mutable fields. Nil field means "keep as is"
type SpacePatch struct {
	Name *string
	Icon *string
}
