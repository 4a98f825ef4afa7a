package todos

import (
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/reverie/internal/plugins/auth"
)

// RegisterRoutes mounts the task page, its form posts and the JSON API.
func RegisterRoutes(e *echo.Echo, h *Handler, authSvc auth.AuthService) {
	requireAuth := auth.RequireAuth(authSvc)

	g := e.Group("/todo", requireAuth)
	g.GET("", h.Page)
	g.POST("", h.Add)
	g.POST("/:id/toggle", h.Toggle)
	g.POST("/:id/edit", h.Edit)
	g.POST("/:id/delete", h.Delete)

	api := e.Group("/api/v1/todos", requireAuth)
	api.GET("", h.ListAPI)
	api.POST("", h.CreateAPI)
	api.POST("/:id/toggle", h.Toggle)
	api.PUT("/:id", h.Edit)
	api.DELETE("/:id", h.Delete)
}
