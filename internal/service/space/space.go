package space

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/and07/mindsync/internal/models"
	"github.com/and07/mindsync/internal/repository"
)

// Space directory
// Knows nothing about the caller: authorization happens in the gate before
// any of these operations run
type SpaceService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *SpaceService {
	return &SpaceService{
		storage: storage,
	}
}

// Create inserts the space and joins the creator in one transaction
// A space must never exist with no members: if the join fails the space
// insert is rolled back
func (s *SpaceService) Create(ctx context.Context, profileUUID uuid.UUID, name string, icon string) (models.Space, error) {
	var space models.Space

	err := s.storage.InTx(ctx, func(tx repository.Storage) error {
		var err error
		space, err = tx.Space().Create(ctx, name, icon)
		if err != nil {
			return err
		}

		_, err = tx.Membership().Create(ctx, profileUUID, space.UUID)
		return err
	})
	if err != nil {
		return models.Space{}, fmt.Errorf("can't create space. Err: %w", err)
	}

	return space, nil
}

func (s *SpaceService) Find(ctx context.Context, spaceUUID uuid.UUID) (models.Space, error) {
	return s.storage.Space().GetByUUID(ctx, spaceUUID)
}

// Update mutates name or icon
// Fails with apperrors.ErrSpaceNotFound if the space vanished meanwhile
func (s *SpaceService) Update(ctx context.Context, spaceUUID uuid.UUID, patch models.SpacePatch) (models.Space, error) {
	return s.storage.Space().Update(ctx, spaceUUID, patch)
}
