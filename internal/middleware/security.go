package middleware

import (
	"github.com/labstack/echo/v4"
)

// contentSecurityPolicy allows only same-origin resources. Sketches and
// thumbnails may be data: or blob: URLs, and dictation opens a same-origin
// websocket, which 'self' covers in connect-src.
const contentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self'; " +
	"style-src 'self' 'unsafe-inline'; " +
	"img-src 'self' data: blob:; " +
	"connect-src 'self'; " +
	"frame-ancestors 'none'; " +
	"base-uri 'self'; " +
	"form-action 'self'"

// SecurityHeaders sets the response headers every page carries. TLS is
// expected to terminate at a reverse proxy; HSTS is only sent when the
// request arrived over HTTPS.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("Content-Security-Policy", contentSecurityPolicy)
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

			// Dictation needs the microphone on our own origin only.
			h.Set("Permissions-Policy", "camera=(), microphone=(self), geolocation=(), payment=()")

			if isHTTPS(c) {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			return next(c)
		}
	}
}

func isHTTPS(c echo.Context) bool {
	req := c.Request()
	return req.TLS != nil || req.Header.Get(echo.HeaderXForwardedProto) == "https"
}
