// Package middleware provides the Echo middleware used by Reverie: panic
// recovery, request logging, security headers, CSRF, proxy-aware client IPs,
// and rate limiting. Registration order lives in internal/app/routes.go.
package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLogger logs one structured line per request once the handler has
// finished. 5xx responses log at error level and 4xx at warn.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			// A returned error has not been written yet; let Echo's error
			// handler pick the status so the log line matches the response.
			if err != nil {
				c.Error(err)
				err = nil
			}

			req := c.Request()
			status := c.Response().Status

			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", status),
				slog.Duration("latency", time.Since(start)),
				slog.String("remote_ip", c.RealIP()),
			}
			if id := req.Header.Get(echo.HeaderXRequestID); id != "" {
				attrs = append(attrs, slog.String("request_id", id))
			}

			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}

			slog.LogAttrs(req.Context(), level, "request", attrs...)
			return err
		}
	}
}
