package membership

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/and07/mindsync/internal/apperrors"
	"github.com/and07/mindsync/internal/models"
	"github.com/and07/mindsync/internal/repository"
)

const (
	inviteCodeLen = 10
	inviteTTL     = 72 * time.Hour
)

// Unambiguous upper case alphabet for invite codes
const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Membership ledger
// Owns the profile to space join relation and invite codes
// Membership is an explicit row, never inferred from space ownership:
// a space has no single owner after creation
type MembershipService struct {
	membershipRepo repository.MembershipRepo
	inviteRepo     repository.InviteCodeRepo
	spaceRepo      repository.SpaceRepo
}

func NewService(membershipRepo repository.MembershipRepo, inviteRepo repository.InviteCodeRepo, spaceRepo repository.SpaceRepo) *MembershipService {
	return &MembershipService{
		membershipRepo: membershipRepo,
		inviteRepo:     inviteRepo,
		spaceRepo:      spaceRepo,
	}
}

// Join inserts the join row
// Duplicate joins fail with apperrors.ErrMembershipExists: the caller made
// an error, the pair count never exceeds one
func (s *MembershipService) Join(ctx context.Context, profileUUID uuid.UUID, spaceUUID uuid.UUID) (models.Membership, error) {
	_, err := s.membershipRepo.Get(ctx, profileUUID, spaceUUID)

	switch {
	case err == nil:
		return models.Membership{}, apperrors.ErrMembershipExists
	case errors.Is(err, apperrors.ErrNotMember):
		// Not joined yet, the unique pair constraint backs the race window
		return s.membershipRepo.Create(ctx, profileUUID, spaceUUID)
	default:
		return models.Membership{}, fmt.Errorf("can't check membership. Err: %w", err)
	}
}

func (s *MembershipService) Find(ctx context.Context, profileUUID uuid.UUID, spaceUUID uuid.UUID) (models.Membership, error) {
	return s.membershipRepo.Get(ctx, profileUUID, spaceUUID)
}

// IsMember reports the membership fact, absence is not an error
func (s *MembershipService) IsMember(ctx context.Context, profileUUID uuid.UUID, spaceUUID uuid.UUID) (bool, error) {
	_, err := s.membershipRepo.Get(ctx, profileUUID, spaceUUID)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, apperrors.ErrNotMember):
		return false, nil
	default:
		return false, fmt.Errorf("can't check membership. Err: %w", err)
	}
}

// ListSpaces returns spaces the profile has joined
func (s *MembershipService) ListSpaces(ctx context.Context, profileUUID uuid.UUID) ([]models.Space, error) {
	return s.membershipRepo.ListSpaces(ctx, profileUUID)
}

// CreateInvite mints the invite code for the space
// One active code per space: a new code replaces the previous one
func (s *MembershipService) CreateInvite(ctx context.Context, spaceUUID uuid.UUID) (models.InviteCode, error) {
	// Codes die with the space, so the space must still exist
	if _, err := s.spaceRepo.GetByUUID(ctx, spaceUUID); err != nil {
		return models.InviteCode{}, err
	}

	code, err := generateCode(inviteCodeLen)
	if err != nil {
		return models.InviteCode{}, fmt.Errorf("error while generating invite code. Err: %w", err)
	}

	now := time.Now().Truncate(time.Second)
	return s.inviteRepo.Save(ctx, models.InviteCode{
		Code:      code,
		SpaceUUID: spaceUUID,
		CreatedAt: now,
		ExpiresAt: now.Add(inviteTTL),
	})
}

// RedeemInvite joins the profile to the space the code belongs to
// Unknown, replaced or expired codes fail closed with apperrors.ErrInviteNotFound
func (s *MembershipService) RedeemInvite(ctx context.Context, code string, profileUUID uuid.UUID) (models.Membership, error) {
	invite, err := s.inviteRepo.GetActive(ctx, code, time.Now())
	if err != nil {
		return models.Membership{}, err
	}

	return s.Join(ctx, profileUUID, invite.SpaceUUID)
}

func generateCode(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	for i := range b {
		b[i] = inviteAlphabet[int(b[i])%len(inviteAlphabet)]
	}

	return string(b), nil
}
