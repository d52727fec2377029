package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/and07/mindsync/internal/apperrors"
	"github.com/and07/mindsync/internal/models"
)

type RefreshTokenRepo struct {
	DB DBTX
}

const saveToken = `-- name: SaveRefreshToken
INSERT INTO refresh_tokens (id, user_uuid, token, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, user_uuid, token, created_at, expires_at
`

func (r *RefreshTokenRepo) Save(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, saveToken, token.ID, token.UserUUID, token.Token, token.CreatedAt, token.ExpiresAt)
	saved, err := pgx.CollectOneRow(rows, rowToRefreshToken)
	if err != nil {
		return saved, fmt.Errorf("db error: %w", err)
	}

	return saved, nil
}

const takeToken = `-- name: TakeRefreshToken
DELETE FROM refresh_tokens
WHERE token = $1
RETURNING id, user_uuid, token, created_at, expires_at
`

// Take deletes the token and returns the deleted row
// Single statement, so under concurrent rotation exactly one caller wins
func (r *RefreshTokenRepo) Take(ctx context.Context, tokenString string) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, takeToken, tokenString)
	token, err := pgx.CollectOneRow(rows, rowToRefreshToken)

	switch {
	case err == nil:
		return token, nil
	case errors.Is(err, pgx.ErrNoRows):
		return token, fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenNotFound)
	default:
		return token, fmt.Errorf("db error: %w", err)
	}
}

const removeToken = `-- name: RemoveRefreshToken
DELETE FROM refresh_tokens
WHERE token = $1
`

// Remove deletes the token if it exists
// Removing an unknown token is not an error: logout must succeed anyway
func (r *RefreshTokenRepo) Remove(ctx context.Context, tokenString string) error {
	_, err := r.DB.Exec(ctx, removeToken, tokenString)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func rowToRefreshToken(row pgx.CollectableRow) (models.RefreshToken, error) {
	var t models.RefreshToken
	err := row.Scan(&t.ID, &t.UserUUID, &t.Token, &t.CreatedAt, &t.ExpiresAt)
	return t, err
}
