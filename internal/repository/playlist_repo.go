package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-music-catalog/internal/model"
)

type PlaylistRepository struct {
	pool *pgxpool.Pool
}

func NewPlaylistRepository(pool *pgxpool.Pool) *PlaylistRepository {
	return &PlaylistRepository{pool: pool}
}

func (r *PlaylistRepository) Create(ctx context.Context, p model.Playlist) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO playlists (id, name, user_id, created_at) VALUES ($1, $2, $3, $4)`,
			p.ID, p.Name, p.UserID, p.CreatedAt)
		if err != nil {
			return fmt.Errorf("create playlist: %w", err)
		}

		for position, songID := range p.SongIDs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO playlist_songs (playlist_id, song_id, position) VALUES ($1, $2, $3)`,
				p.ID, songID, position); err != nil {
				return fmt.Errorf("add playlist song: %w", err)
			}
		}
		return nil
	})
}

func (r *PlaylistRepository) FindByID(ctx context.Context, id string) (model.Playlist, error) {
	var p model.Playlist
	err := r.pool.QueryRow(ctx,
		`SELECT p.id, p.name, p.user_id, p.created_at,
		        COALESCE(array_agg(ps.song_id::text ORDER BY ps.position)
		                 FILTER (WHERE ps.song_id IS NOT NULL), '{}'::text[])
		 FROM playlists p
		 LEFT JOIN playlist_songs ps ON ps.playlist_id = p.id
		 WHERE p.id = $1
		 GROUP BY p.id`, id).
		Scan(&p.ID, &p.Name, &p.UserID, &p.CreatedAt, &p.SongIDs)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Playlist{}, model.ErrPlaylistNotFound
	}
	if err != nil {
		return model.Playlist{}, fmt.Errorf("find playlist by id: %w", err)
	}
	return p, nil
}
