package model

import "errors"

var (
	// User related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Artist related errors
	ErrArtistNotFound = errors.New("artist not found")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")

	// Two-factor related errors
	ErrTwoFactorNotEnabled = errors.New("two-factor authentication is not enabled")

	// Catalog related errors
	ErrSongNotFound     = errors.New("song not found")
	ErrPlaylistNotFound = errors.New("playlist not found")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
