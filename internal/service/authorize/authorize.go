package authorize

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/and07/mindsync/internal/apperrors"
	"github.com/and07/mindsync/internal/models"
)

type profileFinder interface {
	Find(ctx context.Context, profileUUID uuid.UUID) (models.Profile, error)
}

type spaceFinder interface {
	Find(ctx context.Context, spaceUUID uuid.UUID) (models.Space, error)
}

type membershipChecker interface {
	IsMember(ctx context.Context, profileUUID uuid.UUID, spaceUUID uuid.UUID) (bool, error)
}

// Gate answers "may this caller act on this space as this profile?"
// It composes the profile registry, space directory and membership ledger
// and is the only place the membership rule is enforced
type Gate struct {
	profiles    profileFinder
	spaces      spaceFinder
	memberships membershipChecker
}

func NewGate(profiles profileFinder, spaces spaceFinder, memberships membershipChecker) *Gate {
	return &Gate{
		profiles:    profiles,
		spaces:      spaces,
		memberships: memberships,
	}
}

// OwnedProfile loads the profile and verifies the caller owns it
// The order is fixed: existence first (apperrors.ErrProfileNotFound), then
// ownership (apperrors.ErrProfileNotOwned)
func (g *Gate) OwnedProfile(ctx context.Context, userUUID uuid.UUID, profileUUID uuid.UUID) (models.Profile, error) {
	profile, err := g.profiles.Find(ctx, profileUUID)
	if err != nil {
		return models.Profile{}, err
	}

	if profile.UserUUID != userUUID {
		return models.Profile{}, apperrors.ErrProfileNotOwned
	}

	return profile, nil
}

// MemberSpace runs the full space access pipeline:
// owned profile, then space existence, then membership
// Ownership is always checked before the space is even loaded, so a caller
// holding a foreign profile learns nothing about the space
func (g *Gate) MemberSpace(ctx context.Context, userUUID uuid.UUID, profileUUID uuid.UUID, spaceUUID uuid.UUID) (models.Profile, models.Space, error) {
	profile, err := g.OwnedProfile(ctx, userUUID, profileUUID)
	if err != nil {
		return models.Profile{}, models.Space{}, err
	}

	space, err := g.spaces.Find(ctx, spaceUUID)
	if err != nil {
		return models.Profile{}, models.Space{}, err
	}

	member, err := g.memberships.IsMember(ctx, profile.UUID, space.UUID)
	if err != nil {
		return models.Profile{}, models.Space{}, fmt.Errorf("can't check membership. Err: %w", err)
	}
	if !member {
		return models.Profile{}, models.Space{}, apperrors.ErrNotMember
	}

	return profile, space, nil
}
