package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/and07/mindsync/internal/models"
	"github.com/and07/mindsync/internal/repository"
	"github.com/and07/mindsync/internal/service/oauth"
)

const authScheme = "Bearer"

// AccountResolver verifies an external OAuth account
// Must return apperrors.ErrExternalAccountNotFound when it can not be verified
type AccountResolver interface {
	Account(ctx context.Context, externalID string) (oauth.Account, error)
}

// TokenManager issues, rotates and revokes token pairs
type TokenManager interface {
	GeneratePair(ctx context.Context, user models.User) (models.TokenPair, error)
	Rotate(ctx context.Context, refresh string) (models.TokenPair, error)
	Revoke(ctx context.Context, refresh string) error
	ParseAccess(ctx context.Context, access string) (uuid.UUID, error)
}

// Auth service
type AuthService struct {
	token    TokenManager
	accounts AccountResolver
	userRepo repository.UserRepo
}

func NewService(token TokenManager, accounts AccountResolver, userRepo repository.UserRepo) (*AuthService, error) {
	if token == nil || accounts == nil || userRepo == nil {
		return nil, errors.New("token manager, account resolver and user repo must not be nil")
	}

	return &AuthService{
		token:    token,
		accounts: accounts,
		userRepo: userRepo,
	}, nil
}

// LoginWithKakao resolves the external account to a user and logs it in
// The user is created on first sight; concurrent first logins with the same
// email converge on one user row
func (s *AuthService) LoginWithKakao(ctx context.Context, kakaoUserID string) (models.TokenPair, error) {
	account, err := s.accounts.Account(ctx, kakaoUserID)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("can't verify kakao account. Err: %w", err)
	}

	user, err := s.userRepo.GetOrCreateByEmail(ctx, account.Email)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("can't get or create user. Err: %w", err)
	}

	pair, err := s.token.GeneratePair(ctx, user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return pair, nil
}

// Refresh rotates the refresh token: the old one is single use
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	return s.token.Rotate(ctx, refresh)
}

// Logout revokes the refresh token
// Always succeeds for unknown or already revoked tokens
func (s *AuthService) Logout(ctx context.Context, refresh string) error {
	return s.token.Revoke(ctx, refresh)
}

// Auth authenticates the request by its bearer access token
func (s *AuthService) Auth(ctx context.Context, r *http.Request) (models.User, error) {
	var user models.User

	header := r.Header.Get("Authorization")
	scheme, access, found := strings.Cut(header, " ")
	if !found || scheme != authScheme {
		return user, errors.New("no bearer token in request")
	}

	userUUID, err := s.token.ParseAccess(ctx, access)
	if err != nil {
		return user, fmt.Errorf("invalid access token. Err: %w", err)
	}

	user, err = s.userRepo.GetByUUID(ctx, userUUID)
	if err != nil {
		return user, fmt.Errorf("token user not found. Err: %w", err)
	}

	return user, nil
}
