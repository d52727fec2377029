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

type SpaceRepo struct {
	DB DBTX
}

const createSpace = `-- name: CreateSpace
INSERT INTO spaces (uuid, name, icon)
VALUES ($1, $2, $3)
RETURNING uuid, created_at, updated_at, name, icon
`

func (r *SpaceRepo) Create(ctx context.Context, name string, icon string) (models.Space, error) {
	rows, _ := r.DB.Query(ctx, createSpace, uuid.New(), name, icon)
	space, err := pgx.CollectOneRow(rows, rowToSpace)
	if err != nil {
		return space, fmt.Errorf("db error: %w", err)
	}

	return space, nil
}

const getSpaceByUUID = `-- name: GetSpaceByUUID
SELECT uuid, created_at, updated_at, name, icon FROM spaces
WHERE uuid = $1
`

func (r *SpaceRepo) GetByUUID(ctx context.Context, spaceUUID uuid.UUID) (models.Space, error) {
	rows, _ := r.DB.Query(ctx, getSpaceByUUID, spaceUUID)
	space, err := pgx.CollectOneRow(rows, rowToSpace)

	switch {
	case err == nil:
		return space, nil
	case errors.Is(err, pgx.ErrNoRows):
		return space, apperrors.ErrSpaceNotFound
	default:
		return space, fmt.Errorf("db error: %w", err)
	}
}

const updateSpace = `-- name: UpdateSpace
UPDATE spaces
SET name = COALESCE($2, name),
    icon = COALESCE($3, icon),
    updated_at = now()
WHERE uuid = $1
RETURNING uuid, created_at, updated_at, name, icon
`

func (r *SpaceRepo) Update(ctx context.Context, spaceUUID uuid.UUID, patch models.SpacePatch) (models.Space, error) {
	rows, _ := r.DB.Query(ctx, updateSpace, spaceUUID, patch.Name, patch.Icon)
	space, err := pgx.CollectOneRow(rows, rowToSpace)

	switch {
	case err == nil:
		return space, nil
	case errors.Is(err, pgx.ErrNoRows):
		return space, apperrors.ErrSpaceNotFound
	default:
		return space, fmt.Errorf("db error: %w", err)
	}
}

func rowToSpace(row pgx.CollectableRow) (models.Space, error) {
	var s models.Space
	err := row.Scan(&s.UUID, &s.CreatedAt, &s.UpdatedAt, &s.Name, &s.Icon)
	return s, err
}
