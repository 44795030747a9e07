package repository

import (
	"context"

	"github.com/stretchr/testify/mock"

	"go-music-catalog/internal/model"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserRepository) FindByAPIKey(ctx context.Context, apiKey string) (model.User, error) {
	args := m.Called(ctx, apiKey)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	args := m.Called(ctx, phone)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateTwoFactor(ctx context.Context, userID string, secret *string, enabled bool) (int64, error) {
	args := m.Called(ctx, userID, secret, enabled)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) UpdateAPIKey(ctx context.Context, userID string, apiKey *string) (int64, error) {
	args := m.Called(ctx, userID, apiKey)
	return args.Get(0).(int64), args.Error(1)
}

type MockArtistRepository struct {
	mock.Mock
}

func (m *MockArtistRepository) FindByUserID(ctx context.Context, userID string) (model.Artist, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.Artist), args.Error(1)
}

func (m *MockArtistRepository) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockSongRepository struct {
	mock.Mock
}

func (m *MockSongRepository) Create(ctx context.Context, song model.Song) error {
	args := m.Called(ctx, song)
	return args.Error(0)
}

func (m *MockSongRepository) FindByID(ctx context.Context, id string) (model.Song, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Song), args.Error(1)
}

func (m *MockSongRepository) List(ctx context.Context, query model.SongQuery) ([]model.Song, int, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]model.Song), args.Int(1), args.Error(2)
}

func (m *MockSongRepository) Update(ctx context.Context, song model.Song, replaceArtists bool) error {
	args := m.Called(ctx, song, replaceArtists)
	return args.Error(0)
}

func (m *MockSongRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSongRepository) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockPlaylistRepository struct {
	mock.Mock
}

func (m *MockPlaylistRepository) Create(ctx context.Context, playlist model.Playlist) error {
	args := m.Called(ctx, playlist)
	return args.Error(0)
}

func (m *MockPlaylistRepository) FindByID(ctx context.Context, id string) (model.Playlist, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Playlist), args.Error(1)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Log(ctx context.Context, entry model.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
