package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/and07/mindsync/internal/handlers/render"
	"github.com/and07/mindsync/internal/handlers/userctx"
	"github.com/and07/mindsync/internal/models"
)

type profileService interface {
	Create(ctx context.Context, userUUID uuid.UUID, nickname string, image string) (models.Profile, error)
	ListByUser(ctx context.Context, userUUID uuid.UUID) ([]models.Profile, error)
	Update(ctx context.Context, profileUUID uuid.UUID, patch models.ProfilePatch) (models.Profile, error)
}

type profileGate interface {
	OwnedProfile(ctx context.Context, userUUID uuid.UUID, profileUUID uuid.UUID) (models.Profile, error)
}

type ProfileHandler struct {
	profileService profileService
	gate           profileGate
}

func NewProfile(profileService profileService, gate profileGate) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		gate:           gate,
	}
}

type ProfileResponse struct {
	UUID      uuid.UUID `json:"uuid"`
	Nickname  string    `json:"nickname"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toProfileResponse(p models.Profile) ProfileResponse {
	return ProfileResponse{
		UUID:      p.UUID,
		Nickname:  p.Nickname,
		Image:     p.Image,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (h *ProfileHandler) create(w http.ResponseWriter, r *http.Request) {
	type CreateProfileRequest struct {
		Nickname string `json:"nickname" validate:"required,min=1,max=50"`
		Image    string `json:"image"`
	}

	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data, err := render.BindAndValidate[CreateProfileRequest](w, r)
	if err != nil {
		return
	}

	profile, err := h.profileService.Create(r.Context(), user.UUID, data.Nickname, data.Image)
	if err != nil {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSONWithStatus(w, toProfileResponse(profile), http.StatusCreated)
}

func (h *ProfileHandler) list(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	profiles, err := h.profileService.ListByUser(r.Context(), user.UUID)
	if err != nil {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	res := make([]ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		res = append(res, toProfileResponse(p))
	}

	render.JSON(w, res)
}

func (h *ProfileHandler) update(w http.ResponseWriter, r *http.Request) {
	type UpdateProfileRequest struct {
		Nickname *string `json:"nickname" validate:"omitempty,min=1,max=50"`
		Image    *string `json:"image"`
	}

	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	profileUUID, err := uuid.Parse(r.PathValue("profileUuid"))
	if err != nil {
		render.ServiceError(w, "Invalid profile uuid", http.StatusBadRequest)
		return
	}

	data, err := render.BindAndValidate[UpdateProfileRequest](w, r)
	if err != nil {
		return
	}

	// Only the owner may touch the profile
	if _, err := h.gate.OwnedProfile(r.Context(), user.UUID, profileUUID); err != nil {
		renderGateError(w, err)
		return
	}

	profile, err := h.profileService.Update(r.Context(), profileUUID, models.ProfilePatch{
		Nickname: data.Nickname,
		Image:    data.Image,
	})
	if err != nil {
		renderGateError(w, err)
		return
	}

	render.JSON(w, toProfileResponse(profile))
}
