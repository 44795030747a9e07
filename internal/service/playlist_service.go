package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-music-catalog/internal/model"
	"go-music-catalog/pkg/apierror"
)

type playlistStore interface {
	Create(ctx context.Context, playlist model.Playlist) error
	FindByID(ctx context.Context, id string) (model.Playlist, error)
}

type PlaylistService struct {
	playlists playlistStore
	songs     songStore
	now       func() time.Time
}

func NewPlaylistService(playlists playlistStore, songs songStore) *PlaylistService {
	return &PlaylistService{playlists: playlists, songs: songs, now: time.Now}
}

// Create stores a playlist owned by userID. Song order is kept; repeats are dropped.
func (s *PlaylistService) Create(ctx context.Context, userID string, req model.CreatePlaylistRequest) (model.Playlist, error) {
	if err := req.Validate(); err != nil {
		return model.Playlist{}, err
	}

	songIDs := dedupeIDs(req.Songs)
	found, err := s.songs.ExistingIDs(ctx, songIDs)
	if err != nil {
		return model.Playlist{}, fmt.Errorf("check songs: %w", err)
	}
	if missing := missingIDs(songIDs, found); len(missing) > 0 {
		return model.Playlist{}, apierror.BadRequest("unknown songs", strings.Join(missing, ","))
	}

	playlist := model.Playlist{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		UserID:    userID,
		SongIDs:   songIDs,
		CreatedAt: s.now().UTC(),
	}

	if err := s.playlists.Create(ctx, playlist); err != nil {
		return model.Playlist{}, err
	}
	return playlist, nil
}

func (s *PlaylistService) Get(ctx context.Context, id string) (model.Playlist, error) {
	if !model.IsValidID(id) {
		return model.Playlist{}, model.ErrPlaylistNotFound
	}
	return s.playlists.FindByID(ctx, id)
}
