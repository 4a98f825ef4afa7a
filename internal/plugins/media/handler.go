package media

import (
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/reverie/internal/plugins/auth"
)

// Handler serves stored images to their owners.
type Handler struct {
	service MediaService
}

// NewHandler creates a media handler.
func NewHandler(service MediaService) *Handler {
	return &Handler{service: service}
}

// Serve streams the full image (GET /media/:id).
func (h *Handler) Serve(c echo.Context) error {
	file, err := h.service.Get(c.Request().Context(), auth.GetUserID(c), c.Param("id"))
	if err != nil {
		return err
	}
	setCacheHeaders(c)
	c.Response().Header().Set(echo.HeaderContentType, file.MimeType)
	return c.File(h.service.FilePath(file))
}

// ServeThumbnail streams the 300px thumbnail (GET /media/:id/thumb).
func (h *Handler) ServeThumbnail(c echo.Context) error {
	file, err := h.service.Get(c.Request().Context(), auth.GetUserID(c), c.Param("id"))
	if err != nil {
		return err
	}
	setCacheHeaders(c)
	return c.File(h.service.ThumbnailPath(file))
}

// Files are immutable (UUID names) but private to their owner.
func setCacheHeaders(c echo.Context) {
	c.Response().Header().Set("Cache-Control", "private, max-age=31536000, immutable")
}

// RegisterRoutes mounts the media routes behind auth.
func RegisterRoutes(e *echo.Echo, h *Handler, authSvc auth.AuthService) {
	g := e.Group("/media", auth.RequireAuth(authSvc))
	g.GET("/:id", h.Serve)
	g.GET("/:id/thumb", h.ServeThumbnail)
}

