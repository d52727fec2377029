package tokenmanager

import (
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/and07/mindsync/internal/apperrors"
	"github.com/and07/mindsync/internal/models"
	"github.com/and07/mindsync/internal/repository"
	"github.com/and07/mindsync/internal/repository/postgres"
	"github.com/and07/mindsync/internal/testutil"
)

const testSecretKey = "test-secret-key"

func Test_New(t *testing.T) {
	t.Parallel()

	t.Run("empty secret key is an error", func(t *testing.T) {
		_, err := New(Config{}, nil)

		require.Error(t, err)
	})

	t.Run("defaults applied", func(t *testing.T) {
		m, err := New(Config{SecretKey: testSecretKey}, nil)

		require.NoError(t, err)
		assert.Equal(t, jwt.SigningMethodHS256, m.alg)
		assert.Equal(t, defaultAccessTokenTTL, m.accessTTL)
		assert.Equal(t, defaultRefreshTokenTTL, m.refreshTTL)
	})

	t.Run("config overrides defaults", func(t *testing.T) {
		m, err := New(Config{
			SecretKey:  testSecretKey,
			Alg:        "HS512",
			AccessTTL:  time.Minute,
			RefreshTTL: time.Hour,
		}, nil)

		require.NoError(t, err)
		assert.Equal(t, jwt.SigningMethodHS512, m.alg)
		assert.Equal(t, time.Minute, m.accessTTL)
		assert.Equal(t, time.Hour, m.refreshTTL)
	})
}

func Test_TokenManager(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	newManager := func(t *testing.T, storage repository.Storage, cfg Config) *TokenManager {
		t.Helper()

		if cfg.SecretKey == "" {
			cfg.SecretKey = testSecretKey
		}
		m, err := New(cfg, storage)
		require.NoError(t, err)
		return m
	}

	createUser := func(t *testing.T, storage repository.Storage) models.User {
		t.Helper()

		user, err := storage.User().GetOrCreateByEmail(t.Context(), "tokens@example.com")
		require.NoError(t, err)
		return user
	}

	t.Run("generate pair issues parseable access token", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			m := newManager(t, storage, Config{})
			user := createUser(t, storage)

			pair, err := m.GeneratePair(t.Context(), user)

			require.NoError(t, err)
			require.NotEmpty(t, pair.Access.Value)
			require.NotEmpty(t, pair.Refresh.Value)

			userUUID, err := m.ParseAccess(t.Context(), pair.Access.Value)
			require.NoError(t, err)
			assert.Equal(t, user.UUID, userUUID)
		})
	})

	t.Run("parse rejects foreign signature", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			m := newManager(t, storage, Config{})
			other := newManager(t, storage, Config{SecretKey: "another-secret"})
			user := createUser(t, storage)

			pair, err := other.GeneratePair(t.Context(), user)
			require.NoError(t, err)

			_, err = m.ParseAccess(t.Context(), pair.Access.Value)

			require.Error(t, err)
		})
	})

	t.Run("parse rejects expired access token", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			m := newManager(t, storage, Config{AccessTTL: -time.Minute})
			user := createUser(t, storage)

			pair, err := m.GeneratePair(t.Context(), user)
			require.NoError(t, err)

			_, err = m.ParseAccess(t.Context(), pair.Access.Value)

			require.Error(t, err)
			require.ErrorIs(t, err, jwt.ErrTokenExpired)
		})
	})

	t.Run("rotate is single use", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			m := newManager(t, storage, Config{})
			user := createUser(t, storage)

			pair, err := m.GeneratePair(t.Context(), user)
			require.NoError(t, err)

			rotated, err := m.Rotate(t.Context(), pair.Refresh.Value)
			require.NoError(t, err)
			require.NotEqual(t, pair.Refresh.Value, rotated.Refresh.Value)

			_, err = m.Rotate(t.Context(), pair.Refresh.Value)

			require.Error(t, err)
			require.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
		})
	})

	t.Run("rotate rejects expired refresh token", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			m := newManager(t, storage, Config{RefreshTTL: -time.Minute})
			user := createUser(t, storage)

			pair, err := m.GeneratePair(t.Context(), user)
			require.NoError(t, err)

			_, err = m.Rotate(t.Context(), pair.Refresh.Value)

			require.Error(t, err)
			require.ErrorIs(t, err, apperrors.ErrRefreshTokenExpired)
		})
	})

	t.Run("revoke is idempotent", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			m := newManager(t, storage, Config{})
			user := createUser(t, storage)

			pair, err := m.GeneratePair(t.Context(), user)
			require.NoError(t, err)

			require.NoError(t, m.Revoke(t.Context(), pair.Refresh.Value))
			require.NoError(t, m.Revoke(t.Context(), pair.Refresh.Value))

			_, err = m.Rotate(t.Context(), pair.Refresh.Value)
			require.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
		})
	})

	t.Run("concurrent rotation has exactly one winner", func(t *testing.T) {
		// Runs over the pool: the race needs separate connections
		storage := postgres.NewStorage(pg.Pool)
		m := newManager(t, storage, Config{})

		user, err := storage.User().GetOrCreateByEmail(t.Context(), "race@example.com")
		require.NoError(t, err)

		pair, err := m.GeneratePair(t.Context(), user)
		require.NoError(t, err)

		const workers = 8
		errs := make([]error, workers)

		var wg sync.WaitGroup
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = m.Rotate(t.Context(), pair.Refresh.Value)
			}()
		}
		wg.Wait()

		won := 0
		for _, err := range errs {
			if err == nil {
				won++
			} else {
				assert.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
			}
		}
		assert.Equal(t, 1, won, "exactly one rotation should succeed")
	})
}
