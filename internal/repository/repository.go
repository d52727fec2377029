package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/and07/mindsync/internal/models"
)

// User repository interface
type UserRepo interface {
	// Get user by email or create one if it not exists yet
	// Concurrent calls with the same email must converge on a single row
	GetOrCreateByEmail(ctx context.Context, email string) (models.User, error)

	// Get user by id
	// If user not found must return apperrors.ErrUserNotFound
	GetByUUID(ctx context.Context, userUUID uuid.UUID) (models.User, error)
}

// RefreshToken repository interface
type RefreshTokenRepo interface {
	// Save token in repository
	Save(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error)

	// Delete token and return it
	// Exactly one concurrent caller gets the row, the rest must get
	// apperrors.ErrRefreshTokenNotFound
	Take(ctx context.Context, tokenString string) (models.RefreshToken, error)

	// Delete token if it exists
	// Must be idempotent: removing an unknown token is not an error
	Remove(ctx context.Context, tokenString string) error
}

// Profile repository interface
type ProfileRepo interface {
	Create(ctx context.Context, userUUID uuid.UUID, nickname string, image string) (models.Profile, error)

	// If profile not found must return apperrors.ErrProfileNotFound
	GetByUUID(ctx context.Context, profileUUID uuid.UUID) (models.Profile, error)

	ListByUser(ctx context.Context, userUUID uuid.UUID) ([]models.Profile, error)

	// Update mutable fields, nil patch fields keep current values
	// If profile vanished must return apperrors.ErrProfileNotFound
	Update(ctx context.Context, profileUUID uuid.UUID, patch models.ProfilePatch) (models.Profile, error)
}

// Space repository interface
type SpaceRepo interface {
	Create(ctx context.Context, name string, icon string) (models.Space, error)

	// If space not found must return apperrors.ErrSpaceNotFound
	GetByUUID(ctx context.Context, spaceUUID uuid.UUID) (models.Space, error)

	// Update mutable fields, nil patch fields keep current values
	// If space vanished must return apperrors.ErrSpaceNotFound
	Update(ctx context.Context, spaceUUID uuid.UUID, patch models.SpacePatch) (models.Space, error)
}

// Membership repository interface
type MembershipRepo interface {
	// Insert join row
	// If the pair exists already must return apperrors.ErrMembershipExists
	Create(ctx context.Context, profileUUID uuid.UUID, spaceUUID uuid.UUID) (models.Membership, error)

	// If the pair not found must return apperrors.ErrNotMember
	Get(ctx context.Context, profileUUID uuid.UUID, spaceUUID uuid.UUID) (models.Membership, error)

	// Spaces the profile has joined, newest first
	ListSpaces(ctx context.Context, profileUUID uuid.UUID) ([]models.Space, error)
}

// InviteCode repository interface
type InviteCodeRepo interface {
	// Save code for the space replacing the previous one if any
	Save(ctx context.Context, invite models.InviteCode) (models.InviteCode, error)

	// Get code that not expired yet
	// Unknown, replaced or expired code must return apperrors.ErrInviteNotFound
	GetActive(ctx context.Context, code string, now time.Time) (models.InviteCode, error)
}

// Storage aggregates repositories over a single db connection or transaction
type Storage interface {
	User() UserRepo
	Refresh() RefreshTokenRepo
	Profile() ProfileRepo
	Space() SpaceRepo
	Membership() MembershipRepo
	Invite() InviteCodeRepo

	// Run fn within db transaction
	// fn receives Storage bound to the transaction
	InTx(ctx context.Context, fn func(Storage) error) error
}
