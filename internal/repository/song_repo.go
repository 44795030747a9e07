package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-music-catalog/internal/model"
)

const songSelect = `SELECT s.id, s.title, s.release_date, s.duration, s.lyrics, s.created_at, s.updated_at,
		        COALESCE(array_agg(sa.artist_id::text ORDER BY sa.artist_id)
		                 FILTER (WHERE sa.artist_id IS NOT NULL), '{}'::text[])
		 FROM songs s
		 LEFT JOIN songs_artists sa ON sa.song_id = s.id`

type SongRepository struct {
	pool *pgxpool.Pool
}

func NewSongRepository(pool *pgxpool.Pool) *SongRepository {
	return &SongRepository{pool: pool}
}

func scanSong(row pgx.Row) (model.Song, error) {
	var s model.Song
	err := row.Scan(&s.ID, &s.Title, &s.ReleaseDate, &s.Duration, &s.Lyrics, &s.CreatedAt, &s.UpdatedAt, &s.ArtistIDs)
	return s, err
}

func (r *SongRepository) Create(ctx context.Context, s model.Song) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO songs (id, title, release_date, duration, lyrics, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			s.ID, s.Title, s.ReleaseDate, s.Duration, s.Lyrics, s.CreatedAt, s.UpdatedAt)
		if err != nil {
			return fmt.Errorf("create song: %w", err)
		}
		return linkArtists(ctx, tx, s.ID, s.ArtistIDs)
	})
}

func (r *SongRepository) FindByID(ctx context.Context, id string) (model.Song, error) {
	s, err := scanSong(r.pool.QueryRow(ctx, songSelect+` WHERE s.id = $1 GROUP BY s.id`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Song{}, model.ErrSongNotFound
	}
	if err != nil {
		return model.Song{}, fmt.Errorf("find song by id: %w", err)
	}
	return s, nil
}

// List returns one page of songs, newest release first, and the total count.
func (r *SongRepository) List(ctx context.Context, query model.SongQuery) ([]model.Song, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM songs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count songs: %w", err)
	}

	offset := (query.Page - 1) * query.Limit
	rows, err := r.pool.Query(ctx,
		songSelect+` GROUP BY s.id ORDER BY s.release_date DESC, s.created_at DESC LIMIT $1 OFFSET $2`,
		query.Limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list songs: %w", err)
	}
	defer rows.Close()

	songs := make([]model.Song, 0, query.Limit)
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan song: %w", err)
		}
		songs = append(songs, s)
	}
	return songs, total, rows.Err()
}

// Update writes every column of s. Artist links are replaced only when
// replaceArtists is set.
func (r *SongRepository) Update(ctx context.Context, s model.Song, replaceArtists bool) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE songs SET title = $2, release_date = $3, duration = $4, lyrics = $5, updated_at = $6
			 WHERE id = $1`,
			s.ID, s.Title, s.ReleaseDate, s.Duration, s.Lyrics, s.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update song: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrSongNotFound
		}
		if !replaceArtists {
			return nil
		}
		if _, err := tx.Exec(ctx, `DELETE FROM songs_artists WHERE song_id = $1`, s.ID); err != nil {
			return fmt.Errorf("unlink song artists: %w", err)
		}
		return linkArtists(ctx, tx, s.ID, s.ArtistIDs)
	})
}

func (r *SongRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM songs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete song: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrSongNotFound
	}
	return nil
}

// ExistingIDs returns the subset of ids that name a song.
func (r *SongRepository) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id::text FROM songs WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, fmt.Errorf("query song ids: %w", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan song ids: %w", err)
	}
	return found, nil
}

func linkArtists(ctx context.Context, tx pgx.Tx, songID string, artistIDs []string) error {
	for _, artistID := range artistIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO songs_artists (song_id, artist_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			songID, artistID); err != nil {
			return fmt.Errorf("link song artist: %w", err)
		}
	}
	return nil
}
