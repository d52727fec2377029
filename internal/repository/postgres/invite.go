package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/and07/mindsync/internal/apperrors"
	"github.com/and07/mindsync/internal/models"
)

type InviteCodeRepo struct {
	DB DBTX
}

// A space keeps a single active code: saving a new one replaces the old,
// which stops resolving from that moment on
const saveInvite = `-- name: SaveInviteCode
INSERT INTO invite_codes (code, space_uuid, created_at, expires_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (space_uuid) DO UPDATE
SET code = EXCLUDED.code, created_at = EXCLUDED.created_at, expires_at = EXCLUDED.expires_at
RETURNING code, space_uuid, created_at, expires_at
`

func (r *InviteCodeRepo) Save(ctx context.Context, invite models.InviteCode) (models.InviteCode, error) {
	rows, _ := r.DB.Query(ctx, saveInvite, invite.Code, invite.SpaceUUID, invite.CreatedAt, invite.ExpiresAt)
	saved, err := pgx.CollectOneRow(rows, rowToInviteCode)
	if err != nil {
		return saved, fmt.Errorf("db error: %w", err)
	}

	return saved, nil
}

const getActiveInvite = `-- name: GetActiveInviteCode
SELECT code, space_uuid, created_at, expires_at FROM invite_codes
WHERE code = $1 AND expires_at > $2
`

func (r *InviteCodeRepo) GetActive(ctx context.Context, code string, now time.Time) (models.InviteCode, error) {
	rows, _ := r.DB.Query(ctx, getActiveInvite, code, now)
	invite, err := pgx.CollectOneRow(rows, rowToInviteCode)

	switch {
	case err == nil:
		return invite, nil
	case errors.Is(err, pgx.ErrNoRows):
		return invite, fmt.Errorf("repo error: %w", apperrors.ErrInviteNotFound)
	default:
		return invite, fmt.Errorf("db error: %w", err)
	}
}

func rowToInviteCode(row pgx.CollectableRow) (models.InviteCode, error) {
	var i models.InviteCode
	err := row.Scan(&i.Code, &i.SpaceUUID, &i.CreatedAt, &i.ExpiresAt)
	return i, err
}
