package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"go-music-catalog/internal/model"
)

func TestTokenIssuerRoundTrip(t *testing.T) {
	t.Parallel()

	issuer, err := NewTokenIssuer("test-secret", 24*time.Hour)
	require.NoError(t, err)

	t.Run("listener claims", func(t *testing.T) {
		token, err := issuer.Issue(model.LoginClaims{Email: "a@b.com", UserID: "user-1"})
		require.NoError(t, err)

		claims, err := issuer.Verify(token)
		require.NoError(t, err)
		require.Equal(t, "a@b.com", claims.Email)
		require.Equal(t, "user-1", claims.UserID)
		require.Empty(t, claims.ArtistID)

		raw := jwt.MapClaims{}
		_, _, err = jwt.NewParser().ParseUnverified(token, raw)
		require.NoError(t, err)
		require.NotContains(t, raw, "artistId")
	})

	t.Run("artist claims", func(t *testing.T) {
		token, err := issuer.Issue(model.LoginClaims{Email: "a@b.com", UserID: "user-1", ArtistID: "artist-9"})
		require.NoError(t, err)

		claims, err := issuer.Verify(token)
		require.NoError(t, err)
		require.Equal(t, "artist-9", claims.ArtistID)
	})
}

func TestTokenIssuerExpiry(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer, err := NewTokenIssuer("test-secret", 24*time.Hour)
	require.NoError(t, err)

	token, err := issuer.WithClock(fixedClock(issuedAt)).Issue(model.LoginClaims{Email: "a@b.com", UserID: "user-1"})
	require.NoError(t, err)

	_, err = issuer.WithClock(fixedClock(issuedAt.Add(23 * time.Hour))).Verify(token)
	require.NoError(t, err)

	_, err = issuer.WithClock(fixedClock(issuedAt.Add(25 * time.Hour))).Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuerRejectsForgedTokens(t *testing.T) {
	t.Parallel()

	issuer, err := NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	other, err := NewTokenIssuer("other-secret", time.Hour)
	require.NoError(t, err)

	foreign, err := other.Issue(model.LoginClaims{Email: "a@b.com", UserID: "user-1"})
	require.NoError(t, err)
	_, err = issuer.Verify(foreign)
	require.ErrorIs(t, err, ErrInvalidToken)

	now := time.Now()
	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"email":  "a@b.com",
		"userId": "user-1",
		"iat":    now.Unix(),
		"exp":    now.Add(time.Hour).Unix(),
	})
	signed, err := hs512.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = issuer.Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)

	noExpiry := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "a@b.com", "userId": "user-1"})
	signed, err = noExpiry.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = issuer.Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Verify("not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenIssuerValidation(t *testing.T) {
	t.Parallel()

	_, err := NewTokenIssuer(" ", time.Hour)
	require.Error(t, err)

	_, err = NewTokenIssuer("secret", 0)
	require.Error(t, err)
}
