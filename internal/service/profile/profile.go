package profile

import (
	"context"

	"github.com/google/uuid"

	"github.com/and07/mindsync/internal/models"
	"github.com/and07/mindsync/internal/repository"
)

// Profile registry
// Owns profile records; the ownership rule itself is enforced by the
// authorize gate, not here
type ProfileService struct {
	profileRepo repository.ProfileRepo
}

func NewService(profileRepo repository.ProfileRepo) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
	}
}

func (s *ProfileService) Create(ctx context.Context, userUUID uuid.UUID, nickname string, image string) (models.Profile, error) {
	return s.profileRepo.Create(ctx, userUUID, nickname, image)
}

func (s *ProfileService) Find(ctx context.Context, profileUUID uuid.UUID) (models.Profile, error) {
	return s.profileRepo.GetByUUID(ctx, profileUUID)
}

func (s *ProfileService) ListByUser(ctx context.Context, userUUID uuid.UUID) ([]models.Profile, error) {
	return s.profileRepo.ListByUser(ctx, userUUID)
}

// Update mutates nickname or image
// Fails with apperrors.ErrProfileNotFound if the profile vanished meanwhile
func (s *ProfileService) Update(ctx context.Context, profileUUID uuid.UUID, patch models.ProfilePatch) (models.Profile, error) {
	return s.profileRepo.Update(ctx, profileUUID, patch)
}
