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

const (
	defaultSongPageLimit = 10
	maxSongPageLimit     = 100
)

type songStore interface {
	Create(ctx context.Context, song model.Song) error
	FindByID(ctx context.Context, id string) (model.Song, error)
	List(ctx context.Context, query model.SongQuery) ([]model.Song, int, error)
	Update(ctx context.Context, song model.Song, replaceArtists bool) error
	Delete(ctx context.Context, id string) error
	ExistingIDs(ctx context.Context, ids []string) ([]string, error)
}

type SongService struct {
	songs   songStore
	artists artistStore
	now     func() time.Time
}

func NewSongService(songs songStore, artists artistStore) *SongService {
	return &SongService{songs: songs, artists: artists, now: time.Now}
}

func (s *SongService) Create(ctx context.Context, req model.CreateSongRequest) (model.Song, error) {
	if err := req.Validate(); err != nil {
		return model.Song{}, err
	}

	artistIDs, err := s.resolveArtists(ctx, req.Artists)
	if err != nil {
		return model.Song{}, err
	}

	// Validate already checked the layout.
	releaseDate, _ := time.Parse(model.DateLayout, req.ReleaseDate)

	now := s.now().UTC()
	song := model.Song{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		ArtistIDs:   artistIDs,
		ReleaseDate: releaseDate,
		Duration:    req.Duration,
		Lyrics:      req.Lyrics,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.songs.Create(ctx, song); err != nil {
		return model.Song{}, err
	}
	return song, nil
}

func (s *SongService) Get(ctx context.Context, id string) (model.Song, error) {
	if !model.IsValidID(id) {
		return model.Song{}, model.ErrSongNotFound
	}
	return s.songs.FindByID(ctx, id)
}

// List clamps the page and limit before querying.
func (s *SongService) List(ctx context.Context, query model.SongQuery) ([]model.Song, *model.Meta, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = defaultSongPageLimit
	}
	if query.Limit > maxSongPageLimit {
		query.Limit = maxSongPageLimit
	}

	songs, total, err := s.songs.List(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	return songs, model.NewMeta(query.Page, query.Limit, total), nil
}

// Update applies the fields present in req. Artist links change only when
// req names artists.
func (s *SongService) Update(ctx context.Context, id string, req model.UpdateSongRequest) (model.Song, error) {
	if err := req.Validate(); err != nil {
		return model.Song{}, err
	}

	song, err := s.Get(ctx, id)
	if err != nil {
		return model.Song{}, err
	}

	if req.Title != nil {
		song.Title = strings.TrimSpace(*req.Title)
	}
	if req.ReleaseDate != nil {
		song.ReleaseDate, _ = time.Parse(model.DateLayout, *req.ReleaseDate)
	}
	if req.Duration != nil {
		song.Duration = *req.Duration
	}
	if req.Lyrics != nil {
		song.Lyrics = req.Lyrics
	}

	replaceArtists := len(req.Artists) > 0
	if replaceArtists {
		song.ArtistIDs, err = s.resolveArtists(ctx, req.Artists)
		if err != nil {
			return model.Song{}, err
		}
	}
	song.UpdatedAt = s.now().UTC()

	if err := s.songs.Update(ctx, song, replaceArtists); err != nil {
		return model.Song{}, err
	}
	return song, nil
}

func (s *SongService) Delete(ctx context.Context, id string) error {
	if !model.IsValidID(id) {
		return model.ErrSongNotFound
	}
	return s.songs.Delete(ctx, id)
}

// resolveArtists deduplicates ids and rejects any that name no artist.
func (s *SongService) resolveArtists(ctx context.Context, ids []string) ([]string, error) {
	unique := dedupeIDs(ids)

	found, err := s.artists.ExistingIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("check artists: %w", err)
	}
	if missing := missingIDs(unique, found); len(missing) > 0 {
		return nil, apierror.BadRequest("unknown artists", strings.Join(missing, ","))
	}
	return unique, nil
}

func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.ToLower(strings.TrimSpace(id))
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func missingIDs(want []string, found []string) []string {
	have := make(map[string]struct{}, len(found))
	for _, id := range found {
		have[strings.ToLower(id)] = struct{}{}
	}

	var missing []string
	for _, id := range want {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
