package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"go-music-catalog/internal/model"
	"go-music-catalog/internal/security"
	"go-music-catalog/pkg/apierror"
)

// TwoFactorPendingMessage is returned by Login instead of a token while the
// account waits for a TOTP code.
const TwoFactorPendingMessage = "Please submit the token"

type userStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByAPIKey(ctx context.Context, apiKey string) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	Create(ctx context.Context, user model.User) error
	UpdateTwoFactor(ctx context.Context, userID string, secret *string, enabled bool) (int64, error)
	UpdateAPIKey(ctx context.Context, userID string, apiKey *string) (int64, error)
}

type artistStore interface {
	FindByUserID(ctx context.Context, userID string) (model.Artist, error)
	ExistingIDs(ctx context.Context, ids []string) ([]string, error)
}

type passwordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Compare(ctx context.Context, hash string, password string) error
	CompareDummy(ctx context.Context, password string)
}

type tokenIssuer interface {
	Issue(claims model.LoginClaims) (string, error)
	Verify(token string) (model.LoginClaims, error)
}

type totpEngine interface {
	GenerateSecret() string
	Verify(secret string, code string) (bool, error)
	QRCode(secret string, accountName string) ([]byte, error)
}

type AuthService struct {
	users   userStore
	artists artistStore
	hasher  passwordHasher
	tokens  tokenIssuer
	totp    totpEngine
	audit   *AuditService
}

func NewAuthService(users userStore, artists artistStore, hasher passwordHasher, tokens tokenIssuer, totp totpEngine, audit *AuditService) *AuthService {
	return &AuthService{
		users:   users,
		artists: artists,
		hasher:  hasher,
		tokens:  tokens,
		totp:    totp,
		audit:   audit,
	}
}

// Login checks the password and, when two-factor authentication is on, the
// TOTP code. Unknown emails, wrong passwords and wrong codes all fail with the
// same InvalidCredentials error.
func (s *AuthService) Login(ctx context.Context, email string, password string, totpCode string) (model.LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	actor := model.AuditActor{Email: email}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		s.hasher.CompareDummy(ctx, password)
		s.audit.Log(ctx, AuditActionLogin, actor, AuditStatusFailure, "", err)
		return model.LoginResult{}, apierror.InvalidCredentials(model.ErrInvalidCredentials)
	}
	if err != nil {
		return model.LoginResult{}, fmt.Errorf("login: %w", err)
	}
	actor.UserID = user.ID

	if err := s.hasher.Compare(ctx, user.PasswordHash, password); err != nil {
		if !errors.Is(err, security.ErrPasswordMismatch) {
			return model.LoginResult{}, fmt.Errorf("login: %w", err)
		}
		s.audit.Log(ctx, AuditActionLogin, actor, AuditStatusFailure, "", err)
		return model.LoginResult{}, apierror.InvalidCredentials(model.ErrInvalidCredentials)
	}
	user.PasswordHash = ""

	claims, err := s.buildClaims(ctx, user)
	if err != nil {
		return model.LoginResult{}, err
	}

	if user.TwoFactorActive() {
		totpCode = strings.TrimSpace(totpCode)
		if totpCode == "" {
			s.audit.Log(ctx, AuditActionLogin, actor, AuditStatusPending, "", nil)
			return model.LoginResult{Message: TwoFactorPendingMessage, PendingTwoFactor: true}, nil
		}

		verified, verifyErr := s.totp.Verify(*user.TwoFactorAuthSecret, totpCode)
		if verifyErr != nil || !verified {
			s.audit.Log(ctx, AuditActionLogin, actor, AuditStatusFailure, "", errors.Join(model.ErrInvalidCredentials, verifyErr))
			return model.LoginResult{}, apierror.InvalidCredentials(model.ErrInvalidCredentials)
		}
	}

	token, err := s.tokens.Issue(claims)
	if err != nil {
		return model.LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	s.audit.Log(ctx, AuditActionLogin, actor, AuditStatusSuccess, "", nil)
	return model.LoginResult{AccessToken: token}, nil
}

// buildClaims adds artistId only when the user owns an artist profile.
func (s *AuthService) buildClaims(ctx context.Context, user model.User) (model.LoginClaims, error) {
	claims := model.LoginClaims{Email: user.Email, UserID: user.ID}

	artist, err := s.artists.FindByUserID(ctx, user.ID)
	switch {
	case err == nil:
		claims.ArtistID = artist.ID
	case errors.Is(err, model.ErrArtistNotFound):
	default:
		return model.LoginClaims{}, fmt.Errorf("load artist profile: %w", err)
	}

	return claims, nil
}

// VerifyToken decodes a bearer token into a principal.
func (s *AuthService) VerifyToken(token string) (*model.Principal, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, model.ErrUnauthorized
	}

	return &model.Principal{
		UserID:   claims.UserID,
		Email:    claims.Email,
		ArtistID: claims.ArtistID,
		Method:   model.AuthMethodJWT,
	}, nil
}

// EnableTwoFactorAuth returns the current secret when two-factor
// authentication is already on, otherwise stores and returns a new one.
func (s *AuthService) EnableTwoFactorAuth(ctx context.Context, userID string) (model.TwoFactorSecret, error) {
	user, err := s.currentUser(ctx, userID)
	if err != nil {
		return model.TwoFactorSecret{}, err
	}
	actor := model.AuditActor{UserID: user.ID, Email: user.Email}

	if user.TwoFactorActive() {
		s.audit.Log(ctx, AuditActionTwoFactorEnable, actor, AuditStatusSuccess, "existing", nil)
		return model.TwoFactorSecret{Secret: *user.TwoFactorAuthSecret}, nil
	}

	secret := s.totp.GenerateSecret()
	if _, err := s.users.UpdateTwoFactor(ctx, user.ID, &secret, true); err != nil {
		s.audit.Log(ctx, AuditActionTwoFactorEnable, actor, AuditStatusFailure, "", err)
		return model.TwoFactorSecret{}, s.translateUserErr(err)
	}

	s.audit.Log(ctx, AuditActionTwoFactorEnable, actor, AuditStatusSuccess, "generated", nil)
	return model.TwoFactorSecret{Secret: secret}, nil
}

// ValidateTwoFactorAuth reports whether code matches the stored secret. Every
// failure to check the code, as opposed to a mismatch, is Unauthorized.
func (s *AuthService) ValidateTwoFactorAuth(ctx context.Context, userID string, code string) (model.TwoFactorVerification, error) {
	user, err := s.currentUser(ctx, userID)
	if err != nil {
		return model.TwoFactorVerification{}, model.ErrUnauthorized
	}
	actor := model.AuditActor{UserID: user.ID, Email: user.Email}

	if user.TwoFactorAuthSecret == nil || *user.TwoFactorAuthSecret == "" {
		s.audit.Log(ctx, AuditActionTwoFactorVerify, actor, AuditStatusFailure, "", model.ErrTwoFactorNotEnabled)
		return model.TwoFactorVerification{}, model.ErrUnauthorized
	}

	verified, err := s.totp.Verify(*user.TwoFactorAuthSecret, code)
	if err != nil {
		s.audit.Log(ctx, AuditActionTwoFactorVerify, actor, AuditStatusFailure, "", err)
		return model.TwoFactorVerification{}, model.ErrUnauthorized
	}

	status := AuditStatusSuccess
	if !verified {
		status = AuditStatusFailure
	}
	s.audit.Log(ctx, AuditActionTwoFactorVerify, actor, status, "", nil)

	return model.TwoFactorVerification{Verified: verified}, nil
}

func (s *AuthService) DisableTwoFactorAuth(ctx context.Context, userID string) (model.UpdateResult, error) {
	actor := model.AuditActor{UserID: userID}

	affected, err := s.users.UpdateTwoFactor(ctx, userID, nil, false)
	if err != nil {
		s.audit.Log(ctx, AuditActionTwoFactorDisable, actor, AuditStatusFailure, "", err)
		return model.UpdateResult{}, s.translateUserErr(err)
	}

	s.audit.Log(ctx, AuditActionTwoFactorDisable, actor, AuditStatusSuccess, "", nil)
	return model.UpdateResult{Affected: affected}, nil
}

// TwoFactorQRCode renders the provisioning URI of the enabled secret as a PNG.
func (s *AuthService) TwoFactorQRCode(ctx context.Context, userID string) ([]byte, error) {
	user, err := s.currentUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !user.TwoFactorActive() {
		return nil, apierror.Wrap(model.ErrTwoFactorNotEnabled, "BAD_REQUEST", "two-factor authentication is not enabled", "", http.StatusBadRequest)
	}

	png, err := s.totp.QRCode(*user.TwoFactorAuthSecret, user.Email)
	if err != nil {
		return nil, fmt.Errorf("render qr code: %w", err)
	}
	return png, nil
}

// GenerateAPIKey replaces any existing key with a new one.
func (s *AuthService) GenerateAPIKey(ctx context.Context, userID string) (model.APIKeyResult, error) {
	actor := model.AuditActor{UserID: userID}
	key := uuid.NewString()

	if _, err := s.users.UpdateAPIKey(ctx, userID, &key); err != nil {
		s.audit.Log(ctx, AuditActionAPIKeyGenerate, actor, AuditStatusFailure, "", err)
		return model.APIKeyResult{}, s.translateUserErr(err)
	}

	s.audit.Log(ctx, AuditActionAPIKeyGenerate, actor, AuditStatusSuccess, "", nil)
	return model.APIKeyResult{APIKey: key}, nil
}

func (s *AuthService) DeleteAPIKey(ctx context.Context, userID string) (model.UpdateResult, error) {
	actor := model.AuditActor{UserID: userID}

	affected, err := s.users.UpdateAPIKey(ctx, userID, nil)
	if err != nil {
		s.audit.Log(ctx, AuditActionAPIKeyDelete, actor, AuditStatusFailure, "", err)
		return model.UpdateResult{}, s.translateUserErr(err)
	}

	s.audit.Log(ctx, AuditActionAPIKeyDelete, actor, AuditStatusSuccess, "", nil)
	return model.UpdateResult{Affected: affected}, nil
}

// ValidateAPIKey returns the owner of key. An empty or unknown key is
// ErrUnauthorized; store failures are returned as they are.
func (s *AuthService) ValidateAPIKey(ctx context.Context, key string) (model.User, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return model.User{}, model.ErrUnauthorized
	}

	user, err := s.users.FindByAPIKey(ctx, key)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, model.ErrUnauthorized
	}
	if err != nil {
		return model.User{}, fmt.Errorf("validate api key: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

// currentUser loads the authenticated user. A principal whose user row is
// gone is treated as unauthenticated.
func (s *AuthService) currentUser(ctx context.Context, userID string) (model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.User{}, s.translateUserErr(err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *AuthService) translateUserErr(err error) error {
	if errors.Is(err, model.ErrUserNotFound) {
		return model.ErrUnauthorized
	}
	return err
}
