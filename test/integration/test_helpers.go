//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"go-music-catalog/internal/app"
	"go-music-catalog/internal/config"
	"go-music-catalog/internal/database"
	"go-music-catalog/internal/repository"
)

const apiKeyHeader = "x-api-key"

type testEnv struct {
	server *httptest.Server
	db     *database.DB
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	} `json:"error"`
	Meta *struct {
		Page       int `json:"page"`
		Limit      int `json:"limit"`
		Total      int `json:"total"`
		TotalPages int `json:"total_pages"`
	} `json:"meta"`
}

// newTestEnv serves the full application against TEST_DATABASE_URL. Every
// call starts from empty tables.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx := context.Background()
	db, err := database.New(ctx, url, 4, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.Migrate(ctx))
	_, err = db.Pool.Exec(ctx, `TRUNCATE audit_entries, playlist_songs, playlists, songs_artists, songs, artists, users`)
	require.NoError(t, err)

	cfg := &config.Config{
		ServerPort:     "0",
		RequestTimeout: 10 * time.Second,
		DatabaseURL:    url,
		JWTSecret:      "integration-secret",
		JWTTTL:         time.Hour,
		BcryptCost:     4,
		TOTPIssuer:     "Music Catalog",
		APIKeyHeader:   apiKeyHeader,
		CORSOrigins:    []string{"*"},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler, err := app.NewHandler(cfg, logger, db)
	require.NoError(t, err)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &testEnv{server: server, db: db}
}

type requestOption func(*http.Request)

func withBearer(token string) requestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withAPIKey(key string) requestOption {
	return func(r *http.Request) { r.Header.Set(apiKeyHeader, key) }
}

// do sends body as JSON and decodes the envelope. The raw response is
// returned with its body already consumed.
func (e *testEnv) do(t *testing.T, method string, path string, body any, opts ...requestOption) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed envelope
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(raw, &parsed), string(raw))
	}
	return resp, parsed
}

func decodeData(t *testing.T, env envelope, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

type signedUpUser struct {
	ID       string
	Email    string
	Password string
}

func (e *testEnv) signup(t *testing.T) signedUpUser {
	t.Helper()

	user := signedUpUser{Email: "user-" + uuid.NewString()[:8] + "@example.com", Password: "secret123"}
	resp, env := e.do(t, http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     user.Email,
		"password":  user.Password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &created)
	user.ID = created.ID
	return user
}

func (e *testEnv) login(t *testing.T, user signedUpUser) string {
	t.Helper()

	resp, env := e.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    user.Email,
		"password": user.Password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		AccessToken string `json:"accessToken"`
	}
	decodeData(t, env, &result)
	require.NotEmpty(t, result.AccessToken)
	return result.AccessToken
}

// makeArtist links user to an artist profile. There is no public endpoint for it.
func (e *testEnv) makeArtist(t *testing.T, user signedUpUser) string {
	t.Helper()

	artist, err := repository.NewArtistRepository(e.db.Pool).Create(context.Background(), user.ID)
	require.NoError(t, err)
	return artist.ID
}
