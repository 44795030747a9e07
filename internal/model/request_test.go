package model

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldErrors(t *testing.T, err error) validation.Errors {
	t.Helper()

	require.Error(t, err)
	errs, ok := err.(validation.Errors)
	require.True(t, ok, "expected field errors, got %T", err)
	return errs
}

func TestSignupRequestValidate(t *testing.T) {
	t.Parallel()

	valid := SignupRequest{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "secret123"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*SignupRequest)
		field  string
	}{
		{name: "missing first name", mutate: func(r *SignupRequest) { r.FirstName = "" }, field: "firstName"},
		{name: "bad email", mutate: func(r *SignupRequest) { r.Email = "ada" }, field: "email"},
		{name: "short password", mutate: func(r *SignupRequest) { r.Password = "1234567" }, field: "password"},
		{name: "bad phone", mutate: func(r *SignupRequest) { r.Phone = "12" }, field: "phone"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := valid
			tc.mutate(&req)
			assert.Contains(t, fieldErrors(t, req.Validate()), tc.field)
		})
	}
}

func TestSignupRequestNormalize(t *testing.T) {
	t.Parallel()

	req := SignupRequest{FirstName: " Ada ", LastName: "Lovelace ", Email: " Ada@Example.COM ", Phone: "(650) 253-0000"}
	require.NoError(t, validation.Validate(req.Phone, validation.By(validPhone)))
	req.Normalize()

	assert.Equal(t, "Ada", req.FirstName)
	assert.Equal(t, "Lovelace", req.LastName)
	assert.Equal(t, "ada@example.com", req.Email)
	assert.Equal(t, "+16502530000", req.Phone)
}

func TestLoginRequestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, LoginRequest{Email: "a@b.com", Password: "x"}.Validate())
	require.NoError(t, LoginRequest{Email: "a@b.com", Password: "x", Token: "123456"}.Validate())

	errs := fieldErrors(t, LoginRequest{Email: "a@b.com", Password: "x", Token: "12345a"}.Validate())
	assert.Contains(t, errs, "token")

	errs = fieldErrors(t, LoginRequest{}.Validate())
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
}

func TestCreateSongRequestValidate(t *testing.T) {
	t.Parallel()

	valid := CreateSongRequest{
		Title:       "Lovesong",
		Artists:     []string{"0f5e4a7c-9d2b-4c1e-8e3f-6a7b8c9d0e02"},
		ReleaseDate: "2023-05-01",
		Duration:    "03:25",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*CreateSongRequest)
		field  string
	}{
		{name: "no artists", mutate: func(r *CreateSongRequest) { r.Artists = nil }, field: "artists"},
		{name: "bad artist id", mutate: func(r *CreateSongRequest) { r.Artists = []string{"42"} }, field: "artists"},
		{name: "bad date", mutate: func(r *CreateSongRequest) { r.ReleaseDate = "01/05/2023" }, field: "releaseDate"},
		{name: "hour out of range", mutate: func(r *CreateSongRequest) { r.Duration = "24:00" }, field: "duration"},
		{name: "minutes out of range", mutate: func(r *CreateSongRequest) { r.Duration = "03:60" }, field: "duration"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := valid
			tc.mutate(&req)
			assert.Contains(t, fieldErrors(t, req.Validate()), tc.field)
		})
	}
}

func TestUpdateSongRequestAllowsPartialBodies(t *testing.T) {
	t.Parallel()

	require.NoError(t, UpdateSongRequest{}.Validate())

	empty := ""
	errs := fieldErrors(t, UpdateSongRequest{Title: &empty}.Validate())
	assert.Contains(t, errs, "title")
}

func TestCreatePlaylistRequestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, CreatePlaylistRequest{Name: "Road trip", Songs: []string{"3e6f2b1a-8c4d-4f5e-9a0b-1c2d3e4f5a01"}}.Validate())

	errs := fieldErrors(t, CreatePlaylistRequest{}.Validate())
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "songs")
}

func TestNewMeta(t *testing.T) {
	t.Parallel()

	assert.Equal(t, &Meta{Page: 1, Limit: 10, Total: 0, TotalPages: 0}, NewMeta(1, 10, 0))
	assert.Equal(t, &Meta{Page: 2, Limit: 10, Total: 21, TotalPages: 3}, NewMeta(2, 10, 21))
}
