package mood

import (
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/reverie/internal/plugins/auth"
)

// RegisterRoutes mounts the analytics page and mood API behind auth.
func RegisterRoutes(e *echo.Echo, h *Handler, authSvc auth.AuthService) {
	requireAuth := auth.RequireAuth(authSvc)

	e.GET("/analytics", h.Analytics, requireAuth)

	api := e.Group("/api/v1/mood", requireAuth)
	api.GET("/summary", h.SummaryAPI)
	api.POST("/detect", h.DetectAPI)
}
