package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/and07/mindsync/internal/models"
)

func mustParseTime(value string) time.Time {
	dt, err := time.Parse("2006-01-02 15:04:05Z07:00", value)
	if err != nil {
		panic(err)
	}
	return dt
}

// Fixture helpers: foreign keys require real parent rows

func createTestUser(t *testing.T, db DBTX, email string) models.User {
	t.Helper()

	repo := UserRepo{DB: db}
	user, err := repo.GetOrCreateByEmail(t.Context(), email)
	require.NoError(t, err, "test user should be created")
	return user
}

func createTestProfile(t *testing.T, db DBTX, userUUID uuid.UUID, nickname string) models.Profile {
	t.Helper()

	repo := ProfileRepo{DB: db}
	profile, err := repo.Create(t.Context(), userUUID, nickname, "")
	require.NoError(t, err, "test profile should be created")
	return profile
}

func createTestSpace(t *testing.T, db DBTX, name string) models.Space {
	t.Helper()

	repo := SpaceRepo{DB: db}
	space, err := repo.Create(t.Context(), name, "")
	require.NoError(t, err, "test space should be created")
	return space
}
