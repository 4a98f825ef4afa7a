package auth

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/reverie/internal/middleware"
)

// RegisterRoutes mounts the public login routes. Login attempts are limited
// to 10 per IP per minute.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/login", h.LoginForm)
	e.POST("/login", h.Login, middleware.RateLimit(10, time.Minute))
	e.POST("/logout", h.Logout)
}
