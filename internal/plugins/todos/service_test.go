package todos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/keyxmakerx/reverie/internal/apperror"
)

// --- Mock Repository ---

type mockTaskRepo struct {
	tasks          map[string]*Task
	createFn       func(ctx context.Context, task *Task) error
	setCompletedFn func(ctx context.Context, userID, id string, completed bool) error
}

func newMockRepo(tasks ...*Task) *mockTaskRepo {
	m := &mockTaskRepo{tasks: map[string]*Task{}}
	for _, t := range tasks {
		m.tasks[t.ID] = t
	}
	return m
}

func (m *mockTaskRepo) Create(ctx context.Context, t *Task) error {
	if m.createFn != nil {
		return m.createFn(ctx, t)
	}
	m.tasks[t.ID] = t
	return nil
}

func (m *mockTaskRepo) FindByID(_ context.Context, userID, id string) (*Task, error) {
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return nil, apperror.NewNotFound("task not found")
	}
	cp := *t
	return &cp, nil
}

func (m *mockTaskRepo) UpdateText(_ context.Context, userID, id, text string) error {
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return apperror.NewNotFound("task not found")
	}
	t.Text = text
	return nil
}

func (m *mockTaskRepo) SetCompleted(ctx context.Context, userID, id string, completed bool) error {
	if m.setCompletedFn != nil {
		return m.setCompletedFn(ctx, userID, id, completed)
	}
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return apperror.NewNotFound("task not found")
	}
	t.Completed = completed
	return nil
}

func (m *mockTaskRepo) Delete(_ context.Context, userID, id string) error {
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return apperror.NewNotFound("task not found")
	}
	delete(m.tasks, id)
	return nil
}

func (m *mockTaskRepo) ListByUser(_ context.Context, userID string) ([]Task, error) {
	var out []Task
	for _, t := range m.tasks {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

// --- Helpers ---

func assertAppError(t *testing.T, err error, expectedCode int) {
	t.Helper()
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected status %d, got %d (%s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// --- Tests ---

func TestAdd(t *testing.T) {
	repo := newMockRepo()
	svc := NewTaskService(repo)

	task, err := svc.Add(context.Background(), "u1", "  buy   milk\n ")
	if err != nil {
		t.Fatal(err)
	}
	if task.Text != "buy milk" || task.Completed || task.ID == "" {
		t.Errorf("unexpected task %+v", task)
	}
	if _, ok := repo.tasks[task.ID]; !ok {
		t.Error("task not stored")
	}
}

func TestAdd_Rejects(t *testing.T) {
	svc := NewTaskService(newMockRepo())

	_, err := svc.Add(context.Background(), "u1", "   ")
	assertAppError(t, err, 422)

	long := make([]byte, MaxTaskLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = svc.Add(context.Background(), "u1", string(long))
	assertAppError(t, err, 422)
}

func TestAdd_RepoError(t *testing.T) {
	repo := newMockRepo()
	repo.createFn = func(context.Context, *Task) error { return errors.New("db down") }
	_, err := NewTaskService(repo).Add(context.Background(), "u1", "x")
	assertAppError(t, err, 500)
}

func TestToggle(t *testing.T) {
	repo := newMockRepo(&Task{ID: "t1", UserID: "u1", Text: "a"})
	svc := NewTaskService(repo)

	task, err := svc.Toggle(context.Background(), "u1", "t1")
	if err != nil {
		t.Fatal(err)
	}
	if !task.Completed || !repo.tasks["t1"].Completed {
		t.Error("expected completed")
	}
	if task, _ = svc.Toggle(context.Background(), "u1", "t1"); task.Completed {
		t.Error("expected toggled back")
	}

	_, err = svc.Toggle(context.Background(), "u2", "t1")
	assertAppError(t, err, 404)
}

func TestEdit(t *testing.T) {
	repo := newMockRepo(&Task{ID: "t1", UserID: "u1", Text: "a"}, &Task{ID: "t2", UserID: "u1", Text: "b"})
	svc := NewTaskService(repo)

	task, err := svc.Edit(context.Background(), "u1", "t1", "  walk the dog ")
	if err != nil {
		t.Fatal(err)
	}
	if task.Text != "walk the dog" || repo.tasks["t1"].Text != "walk the dog" {
		t.Errorf("edit not applied: %+v", task)
	}

	task, err = svc.Edit(context.Background(), "u1", "t2", "   ")
	if err != nil {
		t.Fatal(err)
	}
	if task != nil {
		t.Error("blank edit should return no task")
	}
	if _, ok := repo.tasks["t2"]; ok {
		t.Error("blank edit should delete the task")
	}

	_, err = svc.Edit(context.Background(), "u1", "missing", "x")
	assertAppError(t, err, 404)
}

func TestEdit_KeepsTagLikeText(t *testing.T) {
	repo := newMockRepo(&Task{ID: "t1", UserID: "u1", Text: "a"}, &Task{ID: "t2", UserID: "u1", Text: "b"})
	svc := NewTaskService(repo)
	ctx := context.Background()

	task, err := svc.Edit(ctx, "u1", "t1", "<urgent>")
	if err != nil {
		t.Fatal(err)
	}
	if task == nil || task.Text != "<urgent>" {
		t.Fatalf("expected task kept with its text, got %+v", task)
	}
	if stored, ok := repo.tasks["t1"]; !ok || stored.Text != "<urgent>" {
		t.Errorf("expected stored text <urgent>, got %+v", stored)
	}

	task, err = svc.Edit(ctx, "u1", "t2", "fix a<b bug")
	if err != nil {
		t.Fatal(err)
	}
	if task.Text != "fix a<b bug" {
		t.Errorf("expected text unchanged, got %q", task.Text)
	}

	added, err := svc.Add(ctx, "u1", "<b>milk</b>")
	if err != nil {
		t.Fatal(err)
	}
	if added.Text != "<b>milk</b>" {
		t.Errorf("expected text as typed, got %q", added.Text)
	}
}

func TestDelete_OtherUser(t *testing.T) {
	repo := newMockRepo(&Task{ID: "t1", UserID: "u1", Text: "a"})
	err := NewTaskService(repo).Delete(context.Background(), "u2", "t1")
	assertAppError(t, err, 404)
	if _, ok := repo.tasks["t1"]; !ok {
		t.Error("task of another user must survive")
	}
}

func TestPending(t *testing.T) {
	tasks := []Task{{Completed: true}, {}, {}}
	if got := Pending(tasks); got != 2 {
		t.Errorf("expected 2 pending, got %d", got)
	}
}

func TestTaskRepository_SQLite(t *testing.T) {
	repo := NewTaskRepository(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"t1", "t2", "t3"} {
		if err := repo.Create(ctx, &Task{ID: id, UserID: "u1", Text: id, CreatedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatal(err)
		}
	}

	list, err := repo.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 || list[0].ID != "t3" || list[2].ID != "t1" {
		t.Fatalf("expected newest first, got %+v", list)
	}

	if err := repo.SetCompleted(ctx, "u1", "t2", true); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpdateText(ctx, "u1", "t2", "changed"); err != nil {
		t.Fatal(err)
	}
	got, err := repo.FindByID(ctx, "u1", "t2")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Completed || got.Text != "changed" {
		t.Errorf("updates not persisted: %+v", got)
	}

	if _, err := repo.FindByID(ctx, "u2", "t2"); !apperror.IsNotFound(err) {
		t.Errorf("expected not found for another user, got %v", err)
	}
	if err := repo.Delete(ctx, "u2", "t2"); !apperror.IsNotFound(err) {
		t.Errorf("expected not found deleting another user's task, got %v", err)
	}
	if err := repo.Delete(ctx, "u1", "t2"); err != nil {
		t.Fatal(err)
	}
	if list, _ := repo.ListByUser(ctx, "u1"); len(list) != 2 {
		t.Errorf("expected 2 tasks after delete, got %d", len(list))
	}
}
