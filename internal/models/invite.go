package models

import (
	"time"

	"github.com/google/uuid"
)

// InviteCode grants membership in exactly one space
// A space holds at most one active code, reusable until it expires
type InviteCode struct {
	Code      string
	SpaceUUID uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
}
