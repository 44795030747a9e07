//go:build integration

package integration

import (
	"bytes"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/xlzd/gotp"
)

func TestSignupLoginAndMe(t *testing.T) {
	e := newTestEnv(t)
	user := e.signup(t)
	token := e.login(t, user)

	resp, env := e.do(t, http.MethodGet, "/api/v1/auth/me", nil, withBearer(token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotContains(t, string(env.Data), "password")

	var me struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	decodeData(t, env, &me)
	require.Equal(t, user.ID, me.ID)
	require.Equal(t, user.Email, me.Email)

	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	require.NotContains(t, claims, "artistId")
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	e := newTestEnv(t)
	user := e.signup(t)

	wrongResp, wrong := e.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": user.Email, "password": "not-the-password"})
	unknownResp, unknown := e.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "ghost@example.com", "password": "secret123"})

	require.Equal(t, http.StatusUnauthorized, wrongResp.StatusCode)
	require.Equal(t, http.StatusUnauthorized, unknownResp.StatusCode)
	require.Equal(t, "Invalid credentials", wrong.Error.Message)
	require.Equal(t, *wrong.Error, *unknown.Error)
}

func TestDuplicateSignupConflicts(t *testing.T) {
	e := newTestEnv(t)
	user := e.signup(t)

	resp, env := e.do(t, http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"firstName": "Other",
		"lastName":  "Person",
		"email":     user.Email,
		"password":  "secret123",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "ALREADY_EXISTS", env.Error.Code)
}

func TestArtistLoginCarriesArtistID(t *testing.T) {
	e := newTestEnv(t)
	user := e.signup(t)
	artistID := e.makeArtist(t, user)

	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(e.login(t, user), claims)
	require.NoError(t, err)
	require.Equal(t, artistID, claims["artistId"])
}

func TestTwoFactorFlow(t *testing.T) {
	e := newTestEnv(t)
	user := e.signup(t)
	token := e.login(t, user)

	_, first := e.do(t, http.MethodPost, "/api/v1/auth/enable-2fa", nil, withBearer(token))
	_, second := e.do(t, http.MethodPost, "/api/v1/auth/enable-2fa", nil, withBearer(token))
	var secretA, secretB struct {
		Secret string `json:"secret"`
	}
	decodeData(t, first, &secretA)
	decodeData(t, second, &secretB)
	require.NotEmpty(t, secretA.Secret)
	require.Equal(t, secretA.Secret, secretB.Secret)

	resp, pending := e.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": user.Email, "password": user.Password})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"message":"Please submit the token"}`, string(pending.Data))

	code := gotp.NewDefaultTOTP(secretA.Secret).At(time.Now().Unix())
	resp, validated := e.do(t, http.MethodPost, "/api/v1/auth/validate-2fa", map[string]string{"token": code}, withBearer(token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"verified":true}`, string(validated.Data))

	resp, withCode := e.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": user.Email, "password": user.Password, "token": code})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(withCode.Data), "accessToken")

	qr := e.rawGet(t, "/api/v1/auth/2fa/qrcode", token)
	require.True(t, bytes.HasPrefix(qr, []byte("\x89PNG")))

	resp, disabled := e.do(t, http.MethodPost, "/api/v1/auth/disable-2fa", nil, withBearer(token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"affected":1}`, string(disabled.Data))

	_, third := e.do(t, http.MethodPost, "/api/v1/auth/enable-2fa", nil, withBearer(token))
	var secretC struct {
		Secret string `json:"secret"`
	}
	decodeData(t, third, &secretC)
	require.NotEqual(t, secretA.Secret, secretC.Secret)
}

func TestAPIKeyLifecycle(t *testing.T) {
	e := newTestEnv(t)
	user := e.signup(t)
	token := e.login(t, user)

	resp, generated := e.do(t, http.MethodGet, "/api/v1/auth/generate-api-key", nil, withBearer(token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var key struct {
		APIKey string `json:"apiKey"`
	}
	decodeData(t, generated, &key)
	require.NotEmpty(t, key.APIKey)

	resp, _ = e.do(t, http.MethodGet, "/api/v1/auth/me", nil, withAPIKey(key.APIKey))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = e.do(t, http.MethodGet, "/api/v1/auth/me", nil, withBearer("garbage"), withAPIKey(key.APIKey))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = e.do(t, http.MethodDelete, "/api/v1/auth/delete-api-key", nil, withBearer(token))
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, deleted := e.do(t, http.MethodDelete, "/api/v1/auth/delete-api-key", nil, withAPIKey(key.APIKey))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"affected":1}`, string(deleted.Data))

	resp, _ = e.do(t, http.MethodGet, "/api/v1/auth/me", nil, withAPIKey(key.APIKey))
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func (e *testEnv) rawGet(t *testing.T, path string, token string) []byte {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, e.server.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return body
}
