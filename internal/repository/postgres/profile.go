package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/and07/mindsync/internal/apperrors"
	"github.com/and07/mindsync/internal/models"
)

type ProfileRepo struct {
	DB DBTX
}

const createProfile = `-- name: CreateProfile
INSERT INTO profiles (uuid, user_uuid, nickname, image)
VALUES ($1, $2, $3, $4)
RETURNING uuid, user_uuid, created_at, updated_at, nickname, image
`

func (r *ProfileRepo) Create(ctx context.Context, userUUID uuid.UUID, nickname string, image string) (models.Profile, error) {
	rows, _ := r.DB.Query(ctx, createProfile, uuid.New(), userUUID, nickname, image)
	profile, err := pgx.CollectOneRow(rows, rowToProfile)
	if err != nil {
		return profile, fmt.Errorf("db error: %w", err)
	}

	return profile, nil
}

const getProfileByUUID = `-- name: GetProfileByUUID
SELECT uuid, user_uuid, created_at, updated_at, nickname, image FROM profiles
WHERE uuid = $1
`

func (r *ProfileRepo) GetByUUID(ctx context.Context, profileUUID uuid.UUID) (models.Profile, error) {
	rows, _ := r.DB.Query(ctx, getProfileByUUID, profileUUID)
	profile, err := pgx.CollectOneRow(rows, rowToProfile)

	switch {
	case err == nil:
		return profile, nil
	case errors.Is(err, pgx.ErrNoRows):
		return profile, apperrors.ErrProfileNotFound
	default:
		return profile, fmt.Errorf("db error: %w", err)
	}
}

const listProfilesByUser = `-- name: ListProfilesByUser
SELECT uuid, user_uuid, created_at, updated_at, nickname, image FROM profiles
WHERE user_uuid = $1
ORDER BY created_at
`

func (r *ProfileRepo) ListByUser(ctx context.Context, userUUID uuid.UUID) ([]models.Profile, error) {
	rows, _ := r.DB.Query(ctx, listProfilesByUser, userUUID)
	profiles, err := pgx.CollectRows(rows, rowToProfile)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return profiles, nil
}

const updateProfile = `-- name: UpdateProfile
UPDATE profiles
SET nickname = COALESCE($2, nickname),
    image = COALESCE($3, image),
    updated_at = now()
WHERE uuid = $1
RETURNING uuid, user_uuid, created_at, updated_at, nickname, image
`

func (r *ProfileRepo) Update(ctx context.Context, profileUUID uuid.UUID, patch models.ProfilePatch) (models.Profile, error) {
	rows, _ := r.DB.Query(ctx, updateProfile, profileUUID, patch.Nickname, patch.Image)
	profile, err := pgx.CollectOneRow(rows, rowToProfile)

	switch {
	case err == nil:
		return profile, nil
	case errors.Is(err, pgx.ErrNoRows):
		return profile, apperrors.ErrProfileNotFound
	default:
		return profile, fmt.Errorf("db error: %w", err)
	}
}

func rowToProfile(row pgx.CollectableRow) (models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.UUID, &p.UserUUID, &p.CreatedAt, &p.UpdatedAt, &p.Nickname, &p.Image)
	return p, err
}
