package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-music-catalog/internal/model"
)

const userColumns = `id, first_name, last_name, email, phone, password_hash,
		        two_factor_secret, enabled_two_factor_auth, api_key, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.PasswordHash,
		&u.TwoFactorAuthSecret, &u.EnabledTwoFactorAuth, &u.APIKey, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email)))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// FindByAPIKey compares the raw key against the stored value. Keys are not hashed at rest.
func (r *UserRepository) FindByAPIKey(ctx context.Context, apiKey string) (model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE api_key = $1`, apiKey))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by api key: %w", err)
	}
	return u, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`,
		strings.TrimSpace(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE phone = $1)`, phone).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check phone exists: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) Create(ctx context.Context, u model.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, first_name, last_name, email, phone, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.FirstName, u.LastName, u.Email, u.Phone, u.PasswordHash, u.CreatedAt, u.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return model.ErrUserAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateTwoFactor stores secret and enabled together. A nil secret clears it.
func (r *UserRepository) UpdateTwoFactor(ctx context.Context, userID string, secret *string, enabled bool) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET two_factor_secret = $2, enabled_two_factor_auth = $3, updated_at = $4 WHERE id = $1`,
		userID, secret, enabled, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("update two factor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, model.ErrUserNotFound
	}
	return tag.RowsAffected(), nil
}

// UpdateAPIKey replaces the user's key. A nil key removes it.
func (r *UserRepository) UpdateAPIKey(ctx context.Context, userID string, apiKey *string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET api_key = $2, updated_at = $3 WHERE id = $1`,
		userID, apiKey, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("update api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, model.ErrUserNotFound
	}
	return tag.RowsAffected(), nil
}
