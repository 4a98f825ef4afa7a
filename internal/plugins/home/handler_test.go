package home

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/reverie/internal/plugins/journal"
	"github.com/keyxmakerx/reverie/internal/plugins/todos"
)

type fakeEntries struct {
	entry *journal.Entry
	err   error
}

func (f *fakeEntries) Today() string { return "2024-03-15" }

func (f *fakeEntries) Get(context.Context, string, string) (*journal.Entry, error) {
	return f.entry, f.err
}

type fakeTasks struct {
	tasks []todos.Task
	err   error
}

func (f *fakeTasks) List(context.Context, string) ([]todos.Task, error) {
	return f.tasks, f.err
}

func serve(t *testing.T, h *Handler) string {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	rec := httptest.NewRecorder()
	if err := h.Home(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	return rec.Body.String()
}

func TestHome_Cards(t *testing.T) {
	h := NewHandler(
		&fakeEntries{entry: &journal.Entry{Text: "hi", SketchStatus: journal.SketchPending}},
		&fakeTasks{tasks: []todos.Task{{}, {Completed: true}, {}}},
	)
	body := serve(t, h)

	for _, want := range []string{
		"Good day, User",
		"Personal Journal",
		"Task Manager",
		"Mood Analytics",
		"sketch is being drawn",
		"2 pending tasks",
		`action="/logout"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in page", want)
		}
	}
}

func TestHome_EmptyDay(t *testing.T) {
	h := NewHandler(&fakeEntries{entry: &journal.Entry{}}, &fakeTasks{})
	body := serve(t, h)
	if !strings.Contains(body, "Nothing written today yet") || !strings.Contains(body, "All caught up!") {
		t.Errorf("unexpected dashboard: %s", body)
	}
}

func TestHome_StatusErrorsStillRender(t *testing.T) {
	h := NewHandler(&fakeEntries{err: errors.New("db down")}, &fakeTasks{err: errors.New("db down")})
	body := serve(t, h)
	if !strings.Contains(body, "Personal Journal") {
		t.Error("expected cards to render despite status errors")
	}
}
