// Package home is the dashboard shown after sign-in: a greeting, links to
// the journal, tasks and analytics, and a glance at today's progress.
package home

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/reverie/internal/middleware"
	"github.com/keyxmakerx/reverie/internal/plugins/auth"
	"github.com/keyxmakerx/reverie/internal/plugins/journal"
	"github.com/keyxmakerx/reverie/internal/plugins/todos"
)

// EntryReader is the slice of the journal the dashboard reads.
type EntryReader interface {
	Today() string
	Get(ctx context.Context, userID, date string) (*journal.Entry, error)
}

// TaskLister is the slice of the task manager the dashboard reads.
type TaskLister interface {
	List(ctx context.Context, userID string) ([]todos.Task, error)
}

// Dashboard is what the home page shows.
type Dashboard struct {
	Name          string
	Today         string
	WroteToday    bool
	SketchStatus  string
	PendingTasks  int
	StatusUnknown bool
}

// Handler serves the dashboard.
type Handler struct {
	entries EntryReader
	tasks   TaskLister
}

// NewHandler creates the home handler.
func NewHandler(entries EntryReader, tasks TaskLister) *Handler {
	return &Handler{entries: entries, tasks: tasks}
}

// Home renders the dashboard (GET /home). Trouble loading the status
// widgets is logged and the cards still render.
func (h *Handler) Home(c echo.Context) error {
	ctx := c.Request().Context()
	userID := auth.GetUserID(c)

	d := Dashboard{Name: "User", Today: h.entries.Today()}
	if s := auth.GetSession(c); s != nil {
		d.Name = auth.GreetingName(s.Email)
	}

	entry, err := h.entries.Get(ctx, userID, d.Today)
	if err != nil {
		slog.Warn("home: loading today's entry", slog.String("user_id", userID), slog.Any("error", err))
		d.StatusUnknown = true
	} else {
		d.WroteToday = entry.Text != ""
		d.SketchStatus = entry.SketchStatus
	}

	tasks, err := h.tasks.List(ctx, userID)
	if err != nil {
		slog.Warn("home: loading tasks", slog.String("user_id", userID), slog.Any("error", err))
		d.StatusUnknown = true
	} else {
		d.PendingTasks = todos.Pending(tasks)
	}

	return middleware.Render(c, http.StatusOK, HomePage(d))
}

// RegisterRoutes mounts the dashboard behind auth.
func RegisterRoutes(e *echo.Echo, h *Handler, authSvc auth.AuthService) {
	e.GET("/home", h.Home, auth.RequireAuth(authSvc))
}
