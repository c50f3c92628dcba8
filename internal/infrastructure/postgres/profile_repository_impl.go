package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"todosync/internal/domain/entity"
	"todosync/internal/domain/repository"
)

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) Create(ctx context.Context, p *entity.Profile) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO profiles (user_id, email, username, photo_base64)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`, p.UserID, p.Email, p.Username, p.PhotoBase64)

	return row.Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *ProfileRepository) Get(ctx context.Context, userID string) (*entity.Profile, error) {
	p := &entity.Profile{}

	row := r.pool.QueryRow(ctx, `
		SELECT user_id, email, username, photo_base64, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`, userID)

	if err := row.Scan(&p.UserID, &p.Email, &p.Username, &p.PhotoBase64, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

// SetUsername overwrites the username field, creating the row when the
// registration-time write never landed.
func (r *ProfileRepository) SetUsername(ctx context.Context, userID, username string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO profiles (user_id, email, username, photo_base64)
		VALUES ($1, COALESCE((SELECT email FROM users WHERE id = $1), ''), $2, '')
		ON CONFLICT (user_id) DO UPDATE SET username = EXCLUDED.username, updated_at = now()
	`, userID, username)
	return err
}

// SetPhoto overwrites the base64 avatar field, creating the row when missing.
func (r *ProfileRepository) SetPhoto(ctx context.Context, userID, photoBase64 string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO profiles (user_id, email, username, photo_base64)
		VALUES ($1, COALESCE((SELECT email FROM users WHERE id = $1), ''), '', $2)
		ON CONFLICT (user_id) DO UPDATE SET photo_base64 = EXCLUDED.photo_base64, updated_at = now()
	`, userID, photoBase64)
	return err
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)
