package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-music-catalog/internal/model"
	"go-music-catalog/internal/repository"
	"go-music-catalog/pkg/apierror"
)

const (
	songID      = "3e6f2b1a-8c4d-4f5e-9a0b-1c2d3e4f5a01"
	otherSongID = "3e6f2b1a-8c4d-4f5e-9a0b-1c2d3e4f5a02"
)

func requireBadRequest(t *testing.T, err error) *apierror.APIError {
	t.Helper()

	var apiErr *apierror.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)
	return apiErr
}

func TestSongCreate(t *testing.T) {
	t.Parallel()

	t.Run("stores a song linked to known artists", func(t *testing.T) {
		songs := &repository.MockSongRepository{}
		artists := &repository.MockArtistRepository{}
		svc := NewSongService(songs, artists)

		artists.On("ExistingIDs", mock.Anything, []string{testArtistID}).Return([]string{testArtistID}, nil)
		songs.On("Create", mock.Anything, mock.MatchedBy(func(s model.Song) bool {
			return s.Title == "Lovesong" && len(s.ArtistIDs) == 1 && s.ReleaseDate.Equal(time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC))
		})).Return(nil)

		song, err := svc.Create(context.Background(), model.CreateSongRequest{
			Title:       " Lovesong ",
			Artists:     []string{testArtistID, testArtistID},
			ReleaseDate: "2023-05-01",
			Duration:    "03:25",
		})
		require.NoError(t, err)
		require.True(t, model.IsValidID(song.ID))
		songs.AssertExpectations(t)
	})

	t.Run("unknown artist is a bad request", func(t *testing.T) {
		songs := &repository.MockSongRepository{}
		artists := &repository.MockArtistRepository{}
		svc := NewSongService(songs, artists)

		artists.On("ExistingIDs", mock.Anything, []string{testArtistID}).Return([]string{}, nil)

		_, err := svc.Create(context.Background(), model.CreateSongRequest{
			Title:       "Lovesong",
			Artists:     []string{testArtistID},
			ReleaseDate: "2023-05-01",
			Duration:    "03:25",
		})
		apiErr := requireBadRequest(t, err)
		require.Equal(t, testArtistID, apiErr.Details)
		songs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestSongList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query model.SongQuery
		want  model.SongQuery
	}{
		{name: "defaults", query: model.SongQuery{}, want: model.SongQuery{Page: 1, Limit: 10}},
		{name: "limit capped", query: model.SongQuery{Page: 3, Limit: 500}, want: model.SongQuery{Page: 3, Limit: 100}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			songs := &repository.MockSongRepository{}
			svc := NewSongService(songs, &repository.MockArtistRepository{})
			songs.On("List", mock.Anything, tc.want).Return([]model.Song{{ID: songID}}, 250, nil)

			items, meta, err := svc.List(context.Background(), tc.query)
			require.NoError(t, err)
			require.Len(t, items, 1)
			require.Equal(t, tc.want.Page, meta.Page)
			require.Equal(t, tc.want.Limit, meta.Limit)
			require.Equal(t, 250, meta.Total)
		})
	}
}

func TestSongUpdate(t *testing.T) {
	t.Parallel()

	t.Run("keeps artists when none are given", func(t *testing.T) {
		songs := &repository.MockSongRepository{}
		svc := NewSongService(songs, &repository.MockArtistRepository{})

		existing := model.Song{ID: songID, Title: "Old", ArtistIDs: []string{testArtistID}, Duration: "03:00"}
		title := "New"
		songs.On("FindByID", mock.Anything, songID).Return(existing, nil)
		songs.On("Update", mock.Anything, mock.MatchedBy(func(s model.Song) bool {
			return s.Title == "New" && s.Duration == "03:00"
		}), false).Return(nil)

		song, err := svc.Update(context.Background(), songID, model.UpdateSongRequest{Title: &title})
		require.NoError(t, err)
		require.Equal(t, []string{testArtistID}, song.ArtistIDs)
	})

	t.Run("missing song", func(t *testing.T) {
		songs := &repository.MockSongRepository{}
		svc := NewSongService(songs, &repository.MockArtistRepository{})
		songs.On("FindByID", mock.Anything, songID).Return(model.Song{}, model.ErrSongNotFound)

		_, err := svc.Update(context.Background(), songID, model.UpdateSongRequest{})
		require.ErrorIs(t, err, model.ErrSongNotFound)
	})

	t.Run("malformed id never reaches the store", func(t *testing.T) {
		songs := &repository.MockSongRepository{}
		svc := NewSongService(songs, &repository.MockArtistRepository{})

		require.ErrorIs(t, svc.Delete(context.Background(), "42"), model.ErrSongNotFound)
		songs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestPlaylistCreate(t *testing.T) {
	t.Parallel()

	t.Run("keeps song order and owner", func(t *testing.T) {
		playlists := &repository.MockPlaylistRepository{}
		songs := &repository.MockSongRepository{}
		svc := NewPlaylistService(playlists, songs)

		songs.On("ExistingIDs", mock.Anything, []string{otherSongID, songID}).Return([]string{songID, otherSongID}, nil)
		playlists.On("Create", mock.Anything, mock.AnythingOfType("model.Playlist")).Return(nil)

		playlist, err := svc.Create(context.Background(), testUserID, model.CreatePlaylistRequest{
			Name:  "Road trip",
			Songs: []string{otherSongID, songID, otherSongID},
		})
		require.NoError(t, err)
		require.Equal(t, testUserID, playlist.UserID)
		require.Equal(t, []string{otherSongID, songID}, playlist.SongIDs)
	})

	t.Run("unknown song is a bad request", func(t *testing.T) {
		playlists := &repository.MockPlaylistRepository{}
		songs := &repository.MockSongRepository{}
		svc := NewPlaylistService(playlists, songs)

		songs.On("ExistingIDs", mock.Anything, []string{songID}).Return(nil, nil)

		_, err := svc.Create(context.Background(), testUserID, model.CreatePlaylistRequest{Name: "Empty", Songs: []string{songID}})
		requireBadRequest(t, err)
		playlists.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
