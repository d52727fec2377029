package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/and07/mindsync/internal/apperrors"
	"github.com/and07/mindsync/internal/handlers/render"
	"github.com/and07/mindsync/internal/models"
)

type authService interface {
	// Login with verified kakao account
	// Has to return apperrors.ErrExternalAccountNotFound if account can't be verified
	LoginWithKakao(ctx context.Context, kakaoUserID string) (models.TokenPair, error)

	// Rotate refresh token
	// If token expired: has to return apperrors.ErrRefreshTokenExpired
	// If token not found: has to return apperrors.ErrRefreshTokenNotFound
	Refresh(ctx context.Context, refresh string) (models.TokenPair, error)

	// Revoke refresh token, idempotent
	Logout(ctx context.Context, refresh string) error
}

type AuthHandler struct {
	auth authService
}

func NewAuth(auth authService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) kakaoLogin(w http.ResponseWriter, r *http.Request) {
	type KakaoLoginRequest struct {
		KakaoUserID string `json:"kakaoUserId" validate:"required"`
	}

	data, err := render.BindAndValidate[KakaoLoginRequest](w, r)
	if err != nil {
		return
	}

	pair, err := h.auth.LoginWithKakao(r.Context(), data.KakaoUserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrExternalAccountNotFound):
			render.ServiceError(w, "Kakao account not found", http.StatusNotFound)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, TokenPairResponse{
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
	})
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	type RefreshRequest struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}

	data, err := render.BindAndValidate[RefreshRequest](w, r)
	if err != nil {
		return
	}

	pair, err := h.auth.Refresh(r.Context(), data.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrRefreshTokenExpired):
			render.ServiceError(w, "Refresh token expired", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrRefreshTokenNotFound):
			render.ServiceError(w, "Refresh token not found", http.StatusUnauthorized)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, TokenPairResponse{
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
	})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	type LogoutRequest struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}
	type LogoutSuccessResponse struct {
		Message string `json:"message"`
	}

	data, err := render.BindAndValidate[LogoutRequest](w, r)
	if err != nil {
		return
	}

	// Logout must succeed even if the session is gone already
	if err := h.auth.Logout(r.Context(), data.RefreshToken); err != nil {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, LogoutSuccessResponse{Message: "Logged out"})
}
