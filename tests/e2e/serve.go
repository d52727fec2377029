package e2e

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stretchr/testify/require"

	"github.com/and07/mindsync/internal/handlers"
	"github.com/and07/mindsync/internal/handlers/middleware"
	"github.com/and07/mindsync/internal/models"
	"github.com/and07/mindsync/internal/repository/postgres"
	"github.com/and07/mindsync/internal/service/auth"
	"github.com/and07/mindsync/internal/service/auth/tokenmanager"
	"github.com/and07/mindsync/internal/service/authorize"
	"github.com/and07/mindsync/internal/service/membership"
	"github.com/and07/mindsync/internal/service/oauth"
	"github.com/and07/mindsync/internal/service/profile"
	"github.com/and07/mindsync/internal/service/space"
	"github.com/and07/mindsync/internal/testutil"
)

const DefaultIconURL = "https://cdn.test/icons/space-default.png"

// FakeKakao plays the provider user API: known ids resolve to emails,
// everything else is unauthorized
type FakeKakao struct {
	mu    sync.Mutex
	users map[string]string
}

// Add registers a kakao user id with its account email
func (f *FakeKakao) Add(kakaoUserID string, email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[kakaoUserID] = email
}

func (f *FakeKakao) handler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	email, ok := f.users[r.PostForm.Get("target_id")]
	f.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"id": 1, "kakao_account": {"email": %q}}`, email)
}

// LoginAs registers the kakao account and logs the user in
func LoginAs(t *testing.T, s Services, kakaoUserID string, email string) models.TokenPair {
	t.Helper()

	s.Kakao.Add(kakaoUserID, email)

	pair, err := s.AuthService.LoginWithKakao(t.Context(), kakaoUserID)
	require.NoError(t, err, "failed to login user")
	return pair
}

// SetTokenToRequest authorizes the request with the access token
func SetTokenToRequest(r *http.Request, pair models.TokenPair) {
	r.Header.Set("Authorization", "Bearer "+pair.Access.Value)
}

type Services struct {
	AuthService       *auth.AuthService
	ProfileService    *profile.ProfileService
	SpaceService      *space.SpaceService
	MembershipService *membership.MembershipService
	Kakao             *FakeKakao
}

// Create db transaction and run server with that connection (one connection cause one transaction)
// The created transaction passed to inner function: so, you can safely use testutil.InTx with it
func ServeWithTx(dbpool *pgxpool.Pool, t *testing.T, fn func(tx pgx.Tx, srvURL string, services Services)) {
	testutil.InTx(dbpool, t, func(tx pgx.Tx) {
		storage := postgres.NewStorage(tx)

		// Fake kakao provider
		kakao := &FakeKakao{users: map[string]string{}}
		kakaoSrv := httptest.NewServer(http.HandlerFunc(kakao.handler))
		defer kakaoSrv.Close()

		// Initialize services
		tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret"}, storage)
		require.NoError(t, err, "token manager should be created without errors")

		as, err := auth.NewService(tokenManager, oauth.NewKakaoClient(kakaoSrv.URL, "test-admin-key"), storage.User())
		require.NoError(t, err, "auth service starting error", err)

		ps := profile.NewService(storage.Profile())
		ss := space.NewService(storage)
		ms := membership.NewService(storage.Membership(), storage.Invite(), storage.Space())
		gate := authorize.NewGate(ps, ss, ms)

		// Initialize handlers
		authHandler := handlers.NewAuth(as)
		authMiddleware := middleware.NewAuth(as)
		profileHandler := handlers.NewProfile(ps, gate)
		spaceHandler := handlers.NewSpace(ss, ms, gate, DefaultIconURL)

		// Complete all together as router
		router := handlers.NewRouter(
			authHandler,
			profileHandler,
			spaceHandler,
			authMiddleware,
		)

		// Run http server with the router in transaction
		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(tx, srv.URL, Services{
			AuthService:       as,
			ProfileService:    ps,
			SpaceService:      ss,
			MembershipService: ms,
			Kakao:             kakao,
		})
	})
}
