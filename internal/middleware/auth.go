package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"go-music-catalog/internal/model"
)

// Guard authenticates a request. Any error denies it with 401.
type Guard func(r *http.Request) (*model.Principal, error)

type tokenVerifier interface {
	VerifyToken(token string) (*model.Principal, error)
}

type apiKeyResolver interface {
	ValidateAPIKey(ctx context.Context, key string) (model.User, error)
}

type principalKey struct{}

// JWTGuard accepts a valid "Authorization: Bearer <token>" header.
func JWTGuard(verifier tokenVerifier) Guard {
	return func(r *http.Request) (*model.Principal, error) {
		token, ok := bearerToken(r)
		if !ok {
			return nil, fmt.Errorf("%w: missing bearer token", model.ErrUnauthorized)
		}

		principal, err := verifier.VerifyToken(token)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid bearer token", model.ErrUnauthorized)
		}
		if principal.UserID == "" {
			return nil, fmt.Errorf("%w: token has no user", model.ErrUnauthorized)
		}
		return principal, nil
	}
}

// ArtistGuard runs jwt and then requires the artistId claim.
func ArtistGuard(jwt Guard) Guard {
	return func(r *http.Request) (*model.Principal, error) {
		principal, err := jwt(r)
		if err != nil {
			return nil, err
		}
		if !principal.IsArtist() {
			return nil, fmt.Errorf("%w: not an artist", model.ErrUnauthorized)
		}
		return principal, nil
	}
}

// APIKeyGuard resolves the key in header to its owner. API-key principals
// never carry an artist id.
func APIKeyGuard(header string, resolver apiKeyResolver, logger *slog.Logger) Guard {
	if logger == nil {
		logger = slog.Default()
	}

	return func(r *http.Request) (*model.Principal, error) {
		key := strings.TrimSpace(r.Header.Get(header))
		if key == "" {
			return nil, fmt.Errorf("%w: missing api key", model.ErrUnauthorized)
		}

		user, err := resolver.ValidateAPIKey(r.Context(), key)
		if err != nil {
			if !errors.Is(err, model.ErrUnauthorized) {
				logger.Error("api key lookup failed", "error", err, "path", r.URL.Path)
			}
			return nil, fmt.Errorf("%w: unknown api key", model.ErrUnauthorized)
		}

		return &model.Principal{
			UserID: user.ID,
			Email:  user.Email,
			Method: model.AuthMethodAPIKey,
		}, nil
	}
}

// CombinedGuard tries each guard in order and admits the first success.
func CombinedGuard(guards ...Guard) Guard {
	return func(r *http.Request) (*model.Principal, error) {
		err := fmt.Errorf("%w: no credentials", model.ErrUnauthorized)
		for _, guard := range guards {
			var principal *model.Principal
			principal, err = guard(r)
			if err == nil {
				return principal, nil
			}
		}
		return nil, err
	}
}

// Require turns guard into chi middleware. The principal it admits is
// available downstream through PrincipalFromContext.
func Require(guard Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := guard(r)
			if err != nil {
				slog.Debug("request denied", "path", r.URL.Path, "reason", err)
				writeUnauthorized(w)
				return
			}

			annotateRequest(r.Context(), principal)
			ctx := context.WithValue(r.Context(), principalKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func PrincipalFromContext(ctx context.Context) (*model.Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(*model.Principal)
	return principal, ok && principal != nil
}

// ContextWithPrincipal is the inverse of PrincipalFromContext, for handler tests.
func ContextWithPrincipal(ctx context.Context, principal *model.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    "UNAUTHORIZED",
			Message: "Unauthorized",
		},
	})
}
