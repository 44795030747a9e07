package model

import "time"

type User struct {
	ID                   string    `json:"id"`
	FirstName            string    `json:"firstName"`
	LastName             string    `json:"lastName"`
	Email                string    `json:"email"`
	Phone                *string   `json:"phone,omitempty"`
	PasswordHash         string    `json:"-"`
	TwoFactorAuthSecret  *string   `json:"-"`
	EnabledTwoFactorAuth bool      `json:"enabledTwoFactorAuth"`
	APIKey               *string   `json:"-"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// TwoFactorActive reports whether login must wait for a TOTP code.
func (u User) TwoFactorActive() bool {
	return u.EnabledTwoFactorAuth && u.TwoFactorAuthSecret != nil && *u.TwoFactorAuthSecret != ""
}

type Artist struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoginClaims is the payload signed into every access token.
type LoginClaims struct {
	Email    string `json:"email"`
	UserID   string `json:"userId"`
	ArtistID string `json:"artistId,omitempty"`
}

type AuthMethod string

const (
	AuthMethodJWT    AuthMethod = "jwt"
	AuthMethodAPIKey AuthMethod = "api_key"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID   string
	Email    string
	ArtistID string
	Method   AuthMethod
}

func (p Principal) IsArtist() bool {
	return p.ArtistID != ""
}

// LoginResult carries either an access token or the pending two-factor message.
type LoginResult struct {
	AccessToken      string `json:"accessToken,omitempty"`
	Message          string `json:"message,omitempty"`
	PendingTwoFactor bool   `json:"-"`
}

type TwoFactorSecret struct {
	Secret string `json:"secret"`
}

type TwoFactorVerification struct {
	Verified bool `json:"verified"`
}

type APIKeyResult struct {
	APIKey string `json:"apiKey"`
}

type UpdateResult struct {
	Affected int64 `json:"affected"`
}
