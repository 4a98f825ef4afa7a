package middleware

import (
	"context"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// LayoutInjector copies request-scoped layout data (signed-in user, CSRF
// token, active page) from the Echo context into the Go context read by the
// templ layouts. It is set once in app/routes.go so this package never
// imports plugin types.
var LayoutInjector func(echo.Context, context.Context) context.Context

// IsAPI reports whether the request targets the JSON API.
func IsAPI(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api/")
}

// WantsJSON reports whether the caller expects JSON rather than HTML: API
// routes, fetch() polling from app.js, and anything that asks for it.
func WantsJSON(c echo.Context) bool {
	if IsAPI(c) {
		return true
	}
	req := c.Request()
	if req.Header.Get("X-Requested-With") == "fetch" {
		return true
	}
	accept := req.Header.Get(echo.HeaderAccept)
	return strings.Contains(accept, echo.MIMEApplicationJSON) && !strings.Contains(accept, echo.MIMETextHTML)
}

// Render writes a templ component with the given status after running the
// LayoutInjector.
func Render(c echo.Context, statusCode int, component templ.Component) error {
	ctx := c.Request().Context()
	if LayoutInjector != nil {
		ctx = LayoutInjector(c, ctx)
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(statusCode)
	return component.Render(ctx, c.Response().Writer)
}
