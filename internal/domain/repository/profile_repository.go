package repository

import (
	"context"

	"todosync/internal/domain/entity"
)

// ProfileRepository defines the interface for the per-user profile document.
// Get returns ErrNotFound when the row is absent; callers decide whether
// absence is an error (for the profile it never is).
type ProfileRepository interface {
	Create(ctx context.Context, p *entity.Profile) error
	Get(ctx context.Context, userID string) (*entity.Profile, error)
	SetUsername(ctx context.Context, userID, username string) error
	SetPhoto(ctx context.Context, userID, photoBase64 string) error
}
