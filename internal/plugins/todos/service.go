package todos

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/keyxmakerx/reverie/internal/apperror"
	"github.com/keyxmakerx/reverie/internal/sanitize"
)

// TaskService is the task manager's business logic.
type TaskService interface {
	List(ctx context.Context, userID string) ([]Task, error)
	Add(ctx context.Context, userID, text string) (*Task, error)
	Toggle(ctx context.Context, userID, id string) (*Task, error)
	Edit(ctx context.Context, userID, id, text string) (*Task, error)
	Delete(ctx context.Context, userID, id string) error
}

type taskService struct {
	repo TaskRepository
	now  func() time.Time
}

// NewTaskService creates a task service.
func NewTaskService(repo TaskRepository) TaskService {
	return &taskService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// List returns the user's tasks, newest first.
func (s *taskService) List(ctx context.Context, userID string) ([]Task, error) {
	tasks, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return tasks, nil
}

// Add creates a task from trimmed text. Blank text is rejected.
func (s *taskService) Add(ctx context.Context, userID, text string) (*Task, error) {
	text, err := cleanText(text)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, apperror.NewValidation("task text is empty")
	}

	t := &Task{ID: uuid.NewString(), UserID: userID, Text: text, CreatedAt: s.now()}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating task: %w", err))
	}
	slog.Debug("task added", slog.String("user_id", userID), slog.String("task_id", t.ID))
	return t, nil
}

// Toggle flips a task between done and not done.
func (s *taskService) Toggle(ctx context.Context, userID, id string) (*Task, error) {
	t, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	t.Completed = !t.Completed
	if err := s.repo.SetCompleted(ctx, userID, id, t.Completed); err != nil {
		return nil, wrap(err)
	}
	return t, nil
}

// Edit replaces a task's text. Blank text deletes the task, and the
// returned task is nil.
func (s *taskService) Edit(ctx context.Context, userID, id, text string) (*Task, error) {
	text, err := cleanText(text)
	if err != nil {
		return nil, err
	}
	t, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, s.Delete(ctx, userID, id)
	}
	if err := s.repo.UpdateText(ctx, userID, id, text); err != nil {
		return nil, wrap(err)
	}
	t.Text = text
	return t, nil
}

// Delete removes a task.
func (s *taskService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return wrap(err)
	}
	slog.Debug("task deleted", slog.String("user_id", userID), slog.String("task_id", id))
	return nil
}

func (s *taskService) find(ctx context.Context, userID, id string) (*Task, error) {
	t, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, wrap(err)
	}
	return t, nil
}

func cleanText(text string) (string, error) {
	text = sanitize.Line(text)
	if len(text) > MaxTaskLength {
		return "", apperror.NewValidation(fmt.Sprintf("task is too long; maximum is %d characters", MaxTaskLength))
	}
	return text, nil
}

// wrap passes NotFound through and hides everything else behind a 500.
func wrap(err error) error {
	if apperror.IsNotFound(err) {
		return err
	}
	return apperror.NewInternal(err)
}
