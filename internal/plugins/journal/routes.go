package journal

import (
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/reverie/internal/plugins/auth"
)

// RegisterRoutes mounts the diary pages and API behind auth.
func RegisterRoutes(e *echo.Echo, h *Handler, authSvc auth.AuthService) {
	requireAuth := auth.RequireAuth(authSvc)

	g := e.Group("/journal", requireAuth)
	g.GET("", h.Show)
	g.POST("", h.Save)
	g.GET("/:date/sketch", h.SketchStatus)

	api := e.Group("/api/v1/journal", requireAuth)
	api.GET("", h.ExportAPI)
	api.POST("/import", h.ImportAPI)
	api.GET("/:date", h.GetEntryAPI)
}
