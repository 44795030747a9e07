package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-music-catalog/internal/model"
)

var ErrInvalidToken = errors.New("invalid token")

type tokenClaims struct {
	Email    string `json:"email"`
	UserID   string `json:"userId"`
	ArtistID string `json:"artistId,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 access tokens carrying model.LoginClaims.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("jwt ttl must be positive")
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// WithClock returns a copy of i reading time from now. Used by tests.
func (i *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	return &TokenIssuer{secret: i.secret, ttl: i.ttl, now: now}
}

func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

func (i *TokenIssuer) Issue(claims model.LoginClaims) (string, error) {
	now := i.now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Email:    claims.Email,
		UserID:   claims.UserID,
		ArtistID: claims.ArtistID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry and returns the embedded claims.
// Every failure is reported as ErrInvalidToken.
func (i *TokenIssuer) Verify(tokenString string) (model.LoginClaims, error) {
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return model.LoginClaims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.UserID == "" || claims.Email == "" {
		return model.LoginClaims{}, fmt.Errorf("%w: missing identity claims", ErrInvalidToken)
	}

	return model.LoginClaims{
		Email:    claims.Email,
		UserID:   claims.UserID,
		ArtistID: claims.ArtistID,
	}, nil
}
