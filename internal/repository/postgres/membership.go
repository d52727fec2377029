package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/and07/mindsync/internal/apperrors"
	"github.com/and07/mindsync/internal/models"
)

type MembershipRepo struct {
	DB DBTX
}

const createMembership = `-- name: CreateMembership
INSERT INTO profile_spaces (profile_uuid, space_uuid)
VALUES ($1, $2)
RETURNING profile_uuid, space_uuid, created_at
`

func (r *MembershipRepo) Create(ctx context.Context, profileUUID uuid.UUID, spaceUUID uuid.UUID) (models.Membership, error) {
	rows, _ := r.DB.Query(ctx, createMembership, profileUUID, spaceUUID)
	membership, err := pgx.CollectOneRow(rows, rowToMembership)

	if err != nil {
		// The primary key on the pair backs the service level existence check
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return membership, apperrors.ErrMembershipExists
		}

		return membership, fmt.Errorf("db error: %w", err)
	}

	return membership, nil
}

const getMembership = `-- name: GetMembership
SELECT profile_uuid, space_uuid, created_at FROM profile_spaces
WHERE profile_uuid = $1 AND space_uuid = $2
`

func (r *MembershipRepo) Get(ctx context.Context, profileUUID uuid.UUID, spaceUUID uuid.UUID) (models.Membership, error) {
	rows, _ := r.DB.Query(ctx, getMembership, profileUUID, spaceUUID)
	membership, err := pgx.CollectOneRow(rows, rowToMembership)

	switch {
	case err == nil:
		return membership, nil
	case errors.Is(err, pgx.ErrNoRows):
		return membership, apperrors.ErrNotMember
	default:
		return membership, fmt.Errorf("db error: %w", err)
	}
}

const listJoinedSpaces = `-- name: ListJoinedSpaces
SELECT s.uuid, s.created_at, s.updated_at, s.name, s.icon
FROM spaces s
JOIN profile_spaces ps ON ps.space_uuid = s.uuid
WHERE ps.profile_uuid = $1
ORDER BY ps.created_at DESC
`

func (r *MembershipRepo) ListSpaces(ctx context.Context, profileUUID uuid.UUID) ([]models.Space, error) {
	rows, _ := r.DB.Query(ctx, listJoinedSpaces, profileUUID)
	spaces, err := pgx.CollectRows(rows, rowToSpace)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return spaces, nil
}

func rowToMembership(row pgx.CollectableRow) (models.Membership, error) {
	var m models.Membership
	err := row.Scan(&m.ProfileUUID, &m.SpaceUUID, &m.CreatedAt)
	return m, err
}
