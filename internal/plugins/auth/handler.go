package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/reverie/internal/apperror"
	"github.com/keyxmakerx/reverie/internal/middleware"
)

const sessionCookieName = "reverie_session"

// Handler serves the login and logout endpoints.
type Handler struct {
	service    AuthService
	sessionTTL int
}

// NewHandler creates an auth handler. sessionTTLSeconds sets the cookie
// Max-Age so it expires with the Redis session.
func NewHandler(service AuthService, sessionTTLSeconds int) *Handler {
	return &Handler{service: service, sessionTTL: sessionTTLSeconds}
}

// LoginForm renders the login page (GET /login). A visitor who is already
// signed in goes straight home.
func (h *Handler) LoginForm(c echo.Context) error {
	if token := getSessionToken(c); token != "" {
		if _, err := h.service.ValidateSession(c.Request().Context(), token); err == nil {
			return c.Redirect(http.StatusSeeOther, "/home")
		}
	}
	return middleware.Render(c, http.StatusOK, LoginPage(middleware.GetCSRFToken(c), "", ""))
}

// Login handles the login form (POST /login).
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	token, _, err := h.service.Login(c.Request().Context(), LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		status := apperror.SafeCode(err)
		if status >= http.StatusInternalServerError {
			return err
		}
		return middleware.Render(c, status, LoginPage(middleware.GetCSRFToken(c), req.Email, apperror.SafeMessage(err)))
	}

	h.setSessionCookie(c, token)
	return c.Redirect(http.StatusSeeOther, "/home")
}

// Logout destroys the session and returns to the login page (POST /logout).
func (h *Handler) Logout(c echo.Context) error {
	if token := getSessionToken(c); token != "" {
		if err := h.service.DestroySession(c.Request().Context(), token); err != nil {
			return err
		}
	}
	clearSessionCookie(c)
	return c.Redirect(http.StatusSeeOther, "/login")
}

func getSessionToken(c echo.Context) string {
	cookie, err := c.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *Handler) setSessionCookie(c echo.Context, token string) {
	req := c.Request()
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   h.sessionTTL,
		HttpOnly: true,
		Secure:   req.TLS != nil || req.Header.Get(echo.HeaderXForwardedProto) == "https",
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
