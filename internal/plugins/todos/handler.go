package todos

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/reverie/internal/apperror"
	"github.com/keyxmakerx/reverie/internal/middleware"
	"github.com/keyxmakerx/reverie/internal/plugins/auth"
)

// Handler serves the task page and API.
type Handler struct {
	service TaskService
}

// NewHandler creates a todos handler.
func NewHandler(service TaskService) *Handler {
	return &Handler{service: service}
}

// Page renders the task list (GET /todo).
func (h *Handler) Page(c echo.Context) error {
	return h.render(c, http.StatusOK, "")
}

func (h *Handler) render(c echo.Context, status int, errMsg string) error {
	tasks, err := h.service.List(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		return err
	}
	return middleware.Render(c, status, TodoPage(tasks, errMsg))
}

// done finishes a form post: browsers go back to the list, fetch callers
// get JSON. Client errors are shown on the page rather than an error page.
func (h *Handler) done(c echo.Context, task *Task, err error) error {
	if err != nil {
		status := apperror.SafeCode(err)
		if middleware.WantsJSON(c) || status >= http.StatusInternalServerError {
			return err
		}
		return h.render(c, status, apperror.SafeMessage(err))
	}
	if middleware.WantsJSON(c) {
		if task == nil {
			return c.NoContent(http.StatusNoContent)
		}
		return c.JSON(http.StatusOK, task)
	}
	return c.Redirect(http.StatusSeeOther, "/todo")
}

func bindText(c echo.Context) (string, error) {
	var req TaskRequest
	if err := c.Bind(&req); err != nil {
		return "", apperror.NewBadRequest("invalid request")
	}
	return req.Text, nil
}

// Add creates a task (POST /todo).
func (h *Handler) Add(c echo.Context) error {
	text, err := bindText(c)
	if err != nil {
		return err
	}
	task, err := h.service.Add(c.Request().Context(), auth.GetUserID(c), text)
	return h.done(c, task, err)
}

// Toggle flips completion (POST /todo/:id/toggle).
func (h *Handler) Toggle(c echo.Context) error {
	task, err := h.service.Toggle(c.Request().Context(), auth.GetUserID(c), c.Param("id"))
	return h.done(c, task, err)
}

// Edit changes the text; blank text deletes (POST /todo/:id/edit).
func (h *Handler) Edit(c echo.Context) error {
	text, err := bindText(c)
	if err != nil {
		return err
	}
	task, err := h.service.Edit(c.Request().Context(), auth.GetUserID(c), c.Param("id"), text)
	return h.done(c, task, err)
}

// Delete removes a task (POST /todo/:id/delete).
func (h *Handler) Delete(c echo.Context) error {
	err := h.service.Delete(c.Request().Context(), auth.GetUserID(c), c.Param("id"))
	return h.done(c, nil, err)
}

// ListAPI returns the tasks as JSON (GET /api/v1/todos).
func (h *Handler) ListAPI(c echo.Context) error {
	tasks, err := h.service.List(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		return err
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return c.JSON(http.StatusOK, tasks)
}

// CreateAPI creates a task (POST /api/v1/todos).
func (h *Handler) CreateAPI(c echo.Context) error {
	text, err := bindText(c)
	if err != nil {
		return err
	}
	task, err := h.service.Add(c.Request().Context(), auth.GetUserID(c), text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}
