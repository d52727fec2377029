package models

import (
	"time"

	"github.com/google/uuid"
)

// Membership is the join fact that a profile belongs to a space
// The pair (ProfileUUID, SpaceUUID) is unique: a profile joins a space at most once
type Membership struct {
	ProfileUUID uuid.UUID
	SpaceUUID   uuid.UUID
	CreatedAt   time.Time
}
