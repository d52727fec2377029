package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/and07/mindsync/internal/db"
	"github.com/and07/mindsync/internal/handlers"
	"github.com/and07/mindsync/internal/handlers/middleware"
	"github.com/and07/mindsync/internal/logger"
	"github.com/and07/mindsync/internal/repository/postgres"
	"github.com/and07/mindsync/internal/service/auth"
	"github.com/and07/mindsync/internal/service/auth/tokenmanager"
	"github.com/and07/mindsync/internal/service/authorize"
	"github.com/and07/mindsync/internal/service/membership"
	"github.com/and07/mindsync/internal/service/oauth"
	"github.com/and07/mindsync/internal/service/profile"
	"github.com/and07/mindsync/internal/service/space"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: c.SecretKey}, storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}
	kakaoClient := oauth.NewKakaoClient(c.KakaoAPIAddr, c.KakaoAdminKey)
	authService, err := auth.NewService(tokenManager, kakaoClient, storage.User())
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	profileService := profile.NewService(storage.Profile())
	spaceService := space.NewService(storage)
	membershipService := membership.NewService(storage.Membership(), storage.Invite(), storage.Space())

	// The gate holds direct references to the services it composes
	gate := authorize.NewGate(profileService, spaceService, membershipService)

	// Initialize handlers
	authHandler := handlers.NewAuth(authService)
	profileHandler := handlers.NewProfile(profileService, gate)
	spaceHandler := handlers.NewSpace(spaceService, membershipService, gate, c.AppIconURL)
	authMiddleware := middleware.NewAuth(authService)

	mux := handlers.NewRouter(
		authHandler,
		profileHandler,
		spaceHandler,
		authMiddleware,
		middleware.LoggerMiddleware(logger),
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
