package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-music-catalog/internal/model"
)

type ArtistRepository struct {
	pool *pgxpool.Pool
}

func NewArtistRepository(pool *pgxpool.Pool) *ArtistRepository {
	return &ArtistRepository{pool: pool}
}

func (r *ArtistRepository) FindByUserID(ctx context.Context, userID string) (model.Artist, error) {
	var a model.Artist
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, created_at FROM artists WHERE user_id = $1`, userID).
		Scan(&a.ID, &a.UserID, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Artist{}, model.ErrArtistNotFound
	}
	if err != nil {
		return model.Artist{}, fmt.Errorf("find artist by user id: %w", err)
	}
	return a, nil
}

// Create links userID to a new artist profile. Artist provisioning has no
// public endpoint; operators and the integration suite call this directly.
func (r *ArtistRepository) Create(ctx context.Context, userID string) (model.Artist, error) {
	a := model.Artist{ID: uuid.NewString(), UserID: userID, CreatedAt: time.Now().UTC()}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO artists (id, user_id, created_at) VALUES ($1, $2, $3)`,
		a.ID, a.UserID, a.CreatedAt)
	if err != nil {
		return model.Artist{}, fmt.Errorf("create artist: %w", err)
	}
	return a, nil
}

// ExistingIDs returns the subset of ids that name an artist.
func (r *ArtistRepository) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id::text FROM artists WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, fmt.Errorf("query artist ids: %w", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan artist ids: %w", err)
	}
	return found, nil
}
