package handlers

import (
	"net/http"

	"github.com/and07/mindsync/internal/handlers/middleware"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	auth *AuthHandler,
	profiles *ProfileHandler,
	spaces *SpaceHandler,
	authMiddleware *middleware.AuthMiddleware,
	mds ...func(next http.Handler) http.Handler,
) http.Handler {
	withAuth := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.Auth(h)
	}

	mux := http.NewServeMux()

	// Session lifecycle, no bearer token required
	mux.HandleFunc("POST /auth/kakao-oauth", auth.kakaoLogin)
	mux.HandleFunc("POST /auth/token", auth.refresh)
	mux.HandleFunc("POST /auth/logout", auth.logout)

	mux.Handle("POST /profiles", withAuth(profiles.create))
	mux.Handle("GET /profiles", withAuth(profiles.list))
	mux.Handle("PATCH /profiles/{profileUuid}", withAuth(profiles.update))

	mux.Handle("POST /spaces", withAuth(spaces.create))
	mux.Handle("GET /spaces", withAuth(spaces.listJoined))
	mux.Handle("POST /spaces/join", withAuth(spaces.join))
	mux.Handle("GET /spaces/{spaceUuid}", withAuth(spaces.get))
	mux.Handle("PATCH /spaces/{spaceUuid}", withAuth(spaces.update))
	mux.Handle("POST /spaces/{spaceUuid}/invite", withAuth(spaces.invite))

	return chain(mux, mds...)
}
