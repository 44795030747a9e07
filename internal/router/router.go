package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-music-catalog/internal/config"
	"go-music-catalog/internal/handler"
	"go-music-catalog/internal/middleware"
	"go-music-catalog/internal/service"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	Songs    *handler.SongHandler
	Playlist *handler.PlaylistHandler
	Health   *handler.HealthHandler
}

func New(cfg *config.Config, logger *slog.Logger, authService *service.AuthService, h Handlers) http.Handler {
	jwt := middleware.JWTGuard(authService)
	apiKey := middleware.APIKeyGuard(cfg.APIKeyHeader, authService, logger)

	requireJWT := middleware.Require(jwt)
	requireArtist := middleware.Require(middleware.ArtistGuard(jwt))
	requireAPIKey := middleware.Require(apiKey)
	requireAny := middleware.Require(middleware.CombinedGuard(jwt, apiKey))

	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.CORSOrigins, cfg.APIKeyHeader))

	r.Get("/health", h.Health.Check)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/signup", h.Auth.Signup)
			auth.Post("/login", h.Auth.Login)

			auth.With(requireJWT).Post("/enable-2fa", h.Auth.EnableTwoFactor)
			auth.With(requireJWT).Post("/validate-2fa", h.Auth.ValidateTwoFactor)
			auth.With(requireJWT).Post("/disable-2fa", h.Auth.DisableTwoFactor)
			auth.With(requireJWT).Get("/2fa/qrcode", h.Auth.TwoFactorQRCode)
			auth.With(requireJWT).Get("/generate-api-key", h.Auth.GenerateAPIKey)
			auth.With(requireAPIKey).Delete("/delete-api-key", h.Auth.DeleteAPIKey)
			auth.With(requireAny).Get("/me", h.Auth.Me)
		})

		api.Route("/songs", func(songs chi.Router) {
			songs.With(requireAny).Get("/", h.Songs.List)
			songs.With(requireAny).Get("/{id}", h.Songs.Get)
			songs.With(requireArtist).Post("/", h.Songs.Create)
			songs.With(requireArtist).Put("/{id}", h.Songs.Update)
			songs.With(requireArtist).Delete("/{id}", h.Songs.Delete)
		})

		api.Route("/playlists", func(playlists chi.Router) {
			playlists.With(requireJWT).Post("/", h.Playlist.Create)
			playlists.With(requireAny).Get("/{id}", h.Playlist.Get)
		})
	})

	return r
}
