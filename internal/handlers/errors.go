package handlers

import (
	"errors"
	"net/http"

	"github.com/and07/mindsync/internal/apperrors"
	"github.com/and07/mindsync/internal/handlers/render"
)

// renderGateError maps authorization pipeline failures to HTTP codes
// The mapping is the single place error kinds become status codes, handlers
// never upgrade or downgrade kinds themselves
func renderGateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrProfileNotFound):
		render.ServiceError(w, "Profile not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrSpaceNotFound):
		render.ServiceError(w, "Space not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrProfileNotOwned):
		render.ServiceError(w, "Profile belongs to different user", http.StatusForbidden)
	case errors.Is(err, apperrors.ErrNotMember):
		render.ServiceError(w, "Profile is not a member of the space", http.StatusForbidden)
	default:
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}
