package auth

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/and07/mindsync/internal/apperrors"
	"github.com/and07/mindsync/internal/repository"
	"github.com/and07/mindsync/internal/repository/postgres"
	"github.com/and07/mindsync/internal/service/auth/tokenmanager"
	"github.com/and07/mindsync/internal/service/oauth"
	"github.com/and07/mindsync/internal/testutil"
)

// fakeKakao serves the provider user API: every known id maps to an email
func fakeKakao(t *testing.T, users map[string]string) *oauth.KakaoClient {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())

		email, ok := users[r.PostForm.Get("target_id")]
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id": 1, "kakao_account": {"email": %q}}`, email)
	}))
	t.Cleanup(srv.Close)

	return oauth.NewKakaoClient(srv.URL, "test-admin-key")
}

func newTestService(t *testing.T, storage repository.Storage, kakao *oauth.KakaoClient) *AuthService {
	t.Helper()

	manager, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret-key"}, storage)
	require.NoError(t, err)

	service, err := NewService(manager, kakao, storage.User())
	require.NoError(t, err)
	return service
}

func Test_NewService(t *testing.T) {
	t.Parallel()

	t.Run("nil dependencies rejected", func(t *testing.T) {
		_, err := NewService(nil, nil, nil)

		require.Error(t, err)
	})
}

func Test_AuthService(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	kakao := fakeKakao(t, map[string]string{"1001": "first@example.com"})

	t.Run("login creates user on first sight", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			service := newTestService(t, storage, kakao)

			pair, err := service.LoginWithKakao(t.Context(), "1001")

			require.NoError(t, err)
			require.NotEmpty(t, pair.Access.Value)
			require.NotEmpty(t, pair.Refresh.Value)

			user, err := storage.User().GetOrCreateByEmail(t.Context(), "first@example.com")
			require.NoError(t, err)
			assert.Equal(t, "first@example.com", user.Email)
		})
	})

	t.Run("repeated logins converge on one user", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			service := newTestService(t, storage, kakao)

			firstPair, err := service.LoginWithKakao(t.Context(), "1001")
			require.NoError(t, err)
			secondPair, err := service.LoginWithKakao(t.Context(), "1001")
			require.NoError(t, err)

			firstUUID, err := service.token.ParseAccess(t.Context(), firstPair.Access.Value)
			require.NoError(t, err)
			secondUUID, err := service.token.ParseAccess(t.Context(), secondPair.Access.Value)
			require.NoError(t, err)

			assert.Equal(t, firstUUID, secondUUID)
		})
	})

	t.Run("login with unverifiable account", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			service := newTestService(t, storage, kakao)

			_, err := service.LoginWithKakao(t.Context(), "9999")

			require.Error(t, err)
			require.ErrorIs(t, err, apperrors.ErrExternalAccountNotFound)
		})
	})

	t.Run("refresh token is single use", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			service := newTestService(t, storage, kakao)

			pair, err := service.LoginWithKakao(t.Context(), "1001")
			require.NoError(t, err)

			rotated, err := service.Refresh(t.Context(), pair.Refresh.Value)
			require.NoError(t, err)
			require.NotEqual(t, pair.Refresh.Value, rotated.Refresh.Value)

			_, err = service.Refresh(t.Context(), pair.Refresh.Value)

			require.Error(t, err)
			require.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
		})
	})

	t.Run("logout is idempotent", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			service := newTestService(t, storage, kakao)

			pair, err := service.LoginWithKakao(t.Context(), "1001")
			require.NoError(t, err)

			require.NoError(t, service.Logout(t.Context(), pair.Refresh.Value))
			require.NoError(t, service.Logout(t.Context(), pair.Refresh.Value))

			_, err = service.Refresh(t.Context(), pair.Refresh.Value)
			require.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
		})
	})

	t.Run("auth by bearer token", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			service := newTestService(t, storage, kakao)

			pair, err := service.LoginWithKakao(t.Context(), "1001")
			require.NoError(t, err)

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("Authorization", "Bearer "+pair.Access.Value)

			user, err := service.Auth(t.Context(), r)

			require.NoError(t, err)
			assert.Equal(t, "first@example.com", user.Email)
		})
	})

	t.Run("auth rejects missing and malformed headers", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			service := newTestService(t, storage, kakao)

			tests := []struct {
				name   string
				header string
			}{
				{name: "no header", header: ""},
				{name: "wrong scheme", header: "Basic dXNlcjpwd2Q="},
				{name: "garbage token", header: "Bearer not-a-jwt"},
			}

			for _, tt := range tests {
				r := httptest.NewRequest(http.MethodGet, "/", nil)
				if tt.header != "" {
					r.Header.Set("Authorization", tt.header)
				}

				_, err := service.Auth(t.Context(), r)
				assert.Error(t, err, tt.name)
			}
		})
	})
}
