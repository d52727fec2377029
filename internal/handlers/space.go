package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/and07/mindsync/internal/apperrors"
	"github.com/and07/mindsync/internal/handlers/render"
	"github.com/and07/mindsync/internal/handlers/userctx"
	"github.com/and07/mindsync/internal/models"
)

type spaceService interface {
	Create(ctx context.Context, profileUUID uuid.UUID, name string, icon string) (models.Space, error)
	Update(ctx context.Context, spaceUUID uuid.UUID, patch models.SpacePatch) (models.Space, error)
}

type membershipService interface {
	ListSpaces(ctx context.Context, profileUUID uuid.UUID) ([]models.Space, error)
	CreateInvite(ctx context.Context, spaceUUID uuid.UUID) (models.InviteCode, error)
	RedeemInvite(ctx context.Context, code string, profileUUID uuid.UUID) (models.Membership, error)
}

type spaceGate interface {
	OwnedProfile(ctx context.Context, userUUID uuid.UUID, profileUUID uuid.UUID) (models.Profile, error)
	MemberSpace(ctx context.Context, userUUID uuid.UUID, profileUUID uuid.UUID, spaceUUID uuid.UUID) (models.Profile, models.Space, error)
}

type SpaceHandler struct {
	spaceService      spaceService
	membershipService membershipService
	gate              spaceGate

	// Icon reference used when a space is created without one
	defaultIcon string
}

func NewSpace(spaceService spaceService, membershipService membershipService, gate spaceGate, defaultIcon string) *SpaceHandler {
	return &SpaceHandler{
		spaceService:      spaceService,
		membershipService: membershipService,
		gate:              gate,
		defaultIcon:       defaultIcon,
	}
}

type SpaceResponse struct {
	UUID      uuid.UUID `json:"uuid"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toSpaceResponse(s models.Space) SpaceResponse {
	return SpaceResponse{
		UUID:      s.UUID,
		Name:      s.Name,
		Icon:      s.Icon,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

type MembershipResponse struct {
	ProfileUUID uuid.UUID `json:"profileUuid"`
	SpaceUUID   uuid.UUID `json:"spaceUuid"`
	CreatedAt   time.Time `json:"createdAt"`
}

// profileFromQuery reads the required profileUuid query parameter
// Writes 400 and returns false when it is missing or malformed: the profile
// registry must not even be consulted then
func profileFromQuery(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.URL.Query().Get("profileUuid")
	if raw == "" {
		render.ServiceError(w, "Query parameter profileUuid is required", http.StatusBadRequest)
		return uuid.Nil, false
	}

	profileUUID, err := uuid.Parse(raw)
	if err != nil {
		render.ServiceError(w, "Invalid profile uuid", http.StatusBadRequest)
		return uuid.Nil, false
	}

	return profileUUID, true
}

func (h *SpaceHandler) create(w http.ResponseWriter, r *http.Request) {
	type CreateSpaceRequest struct {
		Name        string `json:"name" validate:"required,min=1,max=100"`
		ProfileUUID string `json:"profileUuid" validate:"required,uuid"`
		Icon        string `json:"icon"`
	}

	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data, err := render.BindAndValidate[CreateSpaceRequest](w, r)
	if err != nil {
		return
	}
	profileUUID, err := uuid.Parse(data.ProfileUUID)
	if err != nil {
		render.ServiceError(w, "Invalid profile uuid", http.StatusBadRequest)
		return
	}

	profile, err := h.gate.OwnedProfile(r.Context(), user.UUID, profileUUID)
	if err != nil {
		renderGateError(w, err)
		return
	}

	icon := data.Icon
	if icon == "" {
		icon = h.defaultIcon
	}

	space, err := h.spaceService.Create(r.Context(), profile.UUID, data.Name, icon)
	if err != nil {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSONWithStatus(w, toSpaceResponse(space), http.StatusCreated)
}

func (h *SpaceHandler) get(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	spaceUUID, err := uuid.Parse(r.PathValue("spaceUuid"))
	if err != nil {
		render.ServiceError(w, "Invalid space uuid", http.StatusBadRequest)
		return
	}

	profileUUID, ok := profileFromQuery(w, r)
	if !ok {
		return
	}

	_, space, err := h.gate.MemberSpace(r.Context(), user.UUID, profileUUID, spaceUUID)
	if err != nil {
		renderGateError(w, err)
		return
	}

	render.JSON(w, toSpaceResponse(space))
}

func (h *SpaceHandler) update(w http.ResponseWriter, r *http.Request) {
	type UpdateSpaceRequest struct {
		Name *string `json:"name" validate:"omitempty,min=1,max=100"`
		Icon *string `json:"icon"`
	}

	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	spaceUUID, err := uuid.Parse(r.PathValue("spaceUuid"))
	if err != nil {
		render.ServiceError(w, "Invalid space uuid", http.StatusBadRequest)
		return
	}

	profileUUID, ok := profileFromQuery(w, r)
	if !ok {
		return
	}

	data, err := render.BindAndValidate[UpdateSpaceRequest](w, r)
	if err != nil {
		return
	}

	// The gate runs before any mutation happens
	if _, _, err := h.gate.MemberSpace(r.Context(), user.UUID, profileUUID, spaceUUID); err != nil {
		renderGateError(w, err)
		return
	}

	space, err := h.spaceService.Update(r.Context(), spaceUUID, models.SpacePatch{
		Name: data.Name,
		Icon: data.Icon,
	})
	if err != nil {
		renderGateError(w, err)
		return
	}

	render.JSON(w, toSpaceResponse(space))
}

func (h *SpaceHandler) listJoined(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	profileUUID, ok := profileFromQuery(w, r)
	if !ok {
		return
	}

	profile, err := h.gate.OwnedProfile(r.Context(), user.UUID, profileUUID)
	if err != nil {
		renderGateError(w, err)
		return
	}

	spaces, err := h.membershipService.ListSpaces(r.Context(), profile.UUID)
	if err != nil {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	res := make([]SpaceResponse, 0, len(spaces))
	for _, s := range spaces {
		res = append(res, toSpaceResponse(s))
	}

	render.JSON(w, res)
}

func (h *SpaceHandler) invite(w http.ResponseWriter, r *http.Request) {
	type InviteResponse struct {
		InviteCode string    `json:"inviteCode"`
		ExpiresAt  time.Time `json:"expiresAt"`
	}

	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	spaceUUID, err := uuid.Parse(r.PathValue("spaceUuid"))
	if err != nil {
		render.ServiceError(w, "Invalid space uuid", http.StatusBadRequest)
		return
	}

	profileUUID, ok := profileFromQuery(w, r)
	if !ok {
		return
	}

	// Only members may mint invite codes for the space
	_, space, err := h.gate.MemberSpace(r.Context(), user.UUID, profileUUID, spaceUUID)
	if err != nil {
		renderGateError(w, err)
		return
	}

	invite, err := h.membershipService.CreateInvite(r.Context(), space.UUID)
	if err != nil {
		renderGateError(w, err)
		return
	}

	render.JSONWithStatus(w, InviteResponse{
		InviteCode: invite.Code,
		ExpiresAt:  invite.ExpiresAt,
	}, http.StatusCreated)
}

func (h *SpaceHandler) join(w http.ResponseWriter, r *http.Request) {
	type JoinSpaceRequest struct {
		Code        string `json:"code" validate:"required"`
		ProfileUUID string `json:"profileUuid" validate:"required,uuid"`
	}

	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data, err := render.BindAndValidate[JoinSpaceRequest](w, r)
	if err != nil {
		return
	}
	profileUUID, err := uuid.Parse(data.ProfileUUID)
	if err != nil {
		render.ServiceError(w, "Invalid profile uuid", http.StatusBadRequest)
		return
	}

	profile, err := h.gate.OwnedProfile(r.Context(), user.UUID, profileUUID)
	if err != nil {
		renderGateError(w, err)
		return
	}

	membership, err := h.membershipService.RedeemInvite(r.Context(), data.Code, profile.UUID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInviteNotFound):
			render.ServiceError(w, "Invite code not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrMembershipExists):
			render.ServiceError(w, "Profile already joined the space", http.StatusConflict)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, MembershipResponse{
		ProfileUUID: membership.ProfileUUID,
		SpaceUUID:   membership.SpaceUUID,
		CreatedAt:   membership.CreatedAt,
	})
}
