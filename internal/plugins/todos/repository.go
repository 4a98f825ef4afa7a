package todos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/keyxmakerx/reverie/internal/apperror"
)

// TaskRepository is the data access contract for tasks. Every method is
// scoped to the owner so one user can never touch another's tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, userID, id string) (*Task, error)
	UpdateText(ctx context.Context, userID, id, text string) error
	SetCompleted(ctx context.Context, userID, id string, completed bool) error
	Delete(ctx context.Context, userID, id string) error
	ListByUser(ctx context.Context, userID string) ([]Task, error)
}

type taskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a task repository.
func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

// Create inserts a task.
func (r *taskRepository) Create(ctx context.Context, t *Task) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, user_id, body, completed, created_at) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Text, t.Completed, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

// FindByID returns apperror.NotFound for a missing or foreign task.
func (r *taskRepository) FindByID(ctx context.Context, userID, id string) (*Task, error) {
	t := &Task{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, body, completed, created_at FROM tasks WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(&t.ID, &t.UserID, &t.Text, &t.Completed, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("task not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying task: %w", err)
	}
	return t, nil
}

// UpdateText replaces a task's text.
func (r *taskRepository) UpdateText(ctx context.Context, userID, id, text string) error {
	return r.exec(ctx, "updating task",
		`UPDATE tasks SET body = ? WHERE id = ? AND user_id = ?`, text, id, userID)
}

// SetCompleted marks a task done or not done.
func (r *taskRepository) SetCompleted(ctx context.Context, userID, id string, completed bool) error {
	return r.exec(ctx, "updating task",
		`UPDATE tasks SET completed = ? WHERE id = ? AND user_id = ?`, completed, id, userID)
}

// Delete removes a task.
func (r *taskRepository) Delete(ctx context.Context, userID, id string) error {
	return r.exec(ctx, "deleting task",
		`DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
}

// exec runs a single-row write and maps "no row matched" to NotFound.
func (r *taskRepository) exec(ctx context.Context, what, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return apperror.NewNotFound("task not found")
	}
	return nil
}

// ListByUser returns a user's tasks, newest first.
func (r *taskRepository) ListByUser(ctx context.Context, userID string) ([]Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, body, completed, created_at FROM tasks
		 WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Text, &t.Completed, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}
