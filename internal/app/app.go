package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-music-catalog/internal/config"
	"go-music-catalog/internal/database"
	"go-music-catalog/internal/handler"
	"go-music-catalog/internal/repository"
	"go-music-catalog/internal/router"
	"go-music-catalog/internal/security"
	"go-music-catalog/internal/service"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	server *http.Server
	db     *database.DB
	logger *slog.Logger
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	logger.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	appRouter, err := NewHandler(cfg, logger, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	return &App{server: server, db: db, logger: logger}, nil
}

// NewHandler wires repositories, services and handlers over an open database.
func NewHandler(cfg *config.Config, logger *slog.Logger, db *database.DB) (http.Handler, error) {
	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	artistRepo := repository.NewArtistRepository(pool)
	songRepo := repository.NewSongRepository(pool)
	playlistRepo := repository.NewPlaylistRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)

	hasher, err := security.NewPasswordHasher(cfg.BcryptCost, cfg.MaxConcurrentHashes)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize password hasher: %w", err)
	}
	tokens, err := security.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}
	totp := security.NewTOTP(cfg.TOTPIssuer)

	auditService := service.NewAuditService(auditRepo, logger)
	authService := service.NewAuthService(userRepo, artistRepo, hasher, tokens, totp, auditService)
	userService := service.NewUserService(userRepo, hasher, auditService)
	songService := service.NewSongService(songRepo, artistRepo)
	playlistService := service.NewPlaylistService(playlistRepo, songRepo)

	return router.New(cfg, logger, authService, router.Handlers{
		Auth:     handler.NewAuthHandler(authService, userService),
		Songs:    handler.NewSongHandler(songService),
		Playlist: handler.NewPlaylistHandler(playlistService),
		Health:   handler.NewHealthHandler(db),
	}), nil
}

func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-serveErr:
		a.db.Close()
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		a.logger.Info("shutdown requested", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Drain requests before the pool goes away.
	shutdownErr := a.server.Shutdown(ctx)
	a.db.Close()
	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	a.logger.Info("server stopped")
	return nil
}
