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

type UserRepo struct {
	DB DBTX
}

// Upsert keeps the row intact on conflict but still returns it,
// so concurrent first logins with one email converge on a single user
const getOrCreateUser = `-- name: GetOrCreateUserByEmail
INSERT INTO users (uuid, email)
VALUES ($1, $2)
ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
RETURNING uuid, created_at, email
`

func (r *UserRepo) GetOrCreateByEmail(ctx context.Context, email string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getOrCreateUser, uuid.New(), email)
	user, err := pgx.CollectOneRow(rows, rowToUser)
	if err != nil {
		return user, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const getUserByUUID = `-- name: GetUserByUUID
SELECT uuid, created_at, email FROM users
WHERE uuid = $1
`

func (r *UserRepo) GetByUUID(ctx context.Context, userUUID uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByUUID, userUUID)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(&u.UUID, &u.CreatedAt, &u.Email)
	return u, err
}
