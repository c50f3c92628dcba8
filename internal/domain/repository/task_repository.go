package repository

import (
	"context"

	"todosync/internal/domain/entity"
)

// TaskRepository defines the interface for task persistence. Every
// operation is scoped to the owning identity: a task can never be read
// or mutated through another user's id.
type TaskRepository interface {
	Create(ctx context.Context, t *entity.Task) error
	ListByOwner(ctx context.Context, userID string) ([]entity.Task, error)
	SetCompleted(ctx context.Context, userID, taskID string, completed bool) error
	Delete(ctx context.Context, userID, taskID string) error
}
