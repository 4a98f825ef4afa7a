package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/reverie/internal/middleware"
)

const (
	contextKeySession = "auth_session"
	contextKeyUserID  = "auth_user_id"
)

// RequireAuth loads the session named by the cookie into the Echo context.
// Without a valid session, browsers are redirected to /login and API calls
// get a 401.
func RequireAuth(service AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := getSessionToken(c)
			if token == "" {
				return handleUnauthenticated(c)
			}

			session, err := service.ValidateSession(c.Request().Context(), token)
			if err != nil {
				clearSessionCookie(c)
				return handleUnauthenticated(c)
			}

			c.Set(contextKeySession, session)
			c.Set(contextKeyUserID, session.UserID)
			return next(c)
		}
	}
}

// OptionalAuth loads the session when there is one and never blocks. The
// 404 handler uses it to tell anonymous visitors from signed-in users.
func OptionalAuth(service AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token := getSessionToken(c); token != "" {
				if session, err := service.ValidateSession(c.Request().Context(), token); err == nil {
					c.Set(contextKeySession, session)
					c.Set(contextKeyUserID, session.UserID)
				}
			}
			return next(c)
		}
	}
}

func handleUnauthenticated(c echo.Context) error {
	if middleware.WantsJSON(c) {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error":   "unauthorized",
			"message": "authentication required",
		})
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

// GetSession returns the session loaded by RequireAuth, or nil.
func GetSession(c echo.Context) *Session {
	session, _ := c.Get(contextKeySession).(*Session)
	return session
}

// GetUserID returns the signed-in user's ID, or "".
func GetUserID(c echo.Context) string {
	id, _ := c.Get(contextKeyUserID).(string)
	return id
}
