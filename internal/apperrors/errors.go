package apperrors

import (
	"errors"
)

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrExternalAccountNotFound = errors.New("external account not found")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenExpired  = errors.New("refresh token is expired")

	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileNotOwned = errors.New("profile is owned by different user")

	ErrSpaceNotFound = errors.New("space not found")

	ErrMembershipExists = errors.New("profile already joined the space")
	ErrNotMember        = errors.New("profile is not a member of the space")

	ErrInviteNotFound = errors.New("invite code not found")
)
