package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	UUID      uuid.UUID
	CreatedAt time.Time
	Email     string
}
