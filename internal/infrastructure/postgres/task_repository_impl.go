package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"todosync/internal/domain/entity"
	"todosync/internal/domain/repository"
)

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

func (r *TaskRepository) Create(ctx context.Context, t *entity.Task) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (user_id, text, completed)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, t.UserID, t.Text, t.Completed)

	return row.Scan(&t.ID, &t.CreatedAt)
}

// ListByOwner returns the full task set for one identity. No ORDER BY:
// the feed contract promises only whatever order the store yields for
// the owner filter.
func (r *TaskRepository) ListByOwner(ctx context.Context, userID string) ([]entity.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, text, completed, created_at
		FROM tasks
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]entity.Task, 0)
	for rows.Next() {
		var t entity.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Text, &t.Completed, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// SetCompleted flips the completed flag. Zero rows affected is not an
// error: the task may have been deleted concurrently.
func (r *TaskRepository) SetCompleted(ctx context.Context, userID, taskID string, completed bool) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET completed = $1
		WHERE id = $2 AND user_id = $3
	`, completed, taskID, userID)
	return err
}

// Delete removes a task. Deleting an absent id is a no-op.
func (r *TaskRepository) Delete(ctx context.Context, userID, taskID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM tasks
		WHERE id = $1 AND user_id = $2
	`, taskID, userID)
	return err
}

var _ repository.TaskRepository = (*TaskRepository)(nil)
