// Package app is the application bootstrap and dependency injection root.
// It holds the shared infrastructure (DB pool, Redis client, Echo instance,
// sketch worker) and wires every plugin and widget together.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/keyxmakerx/reverie/internal/apperror"
	"github.com/keyxmakerx/reverie/internal/config"
	"github.com/keyxmakerx/reverie/internal/middleware"
	"github.com/keyxmakerx/reverie/internal/templates/pages"
	"github.com/keyxmakerx/reverie/internal/widgets/sketch"
)

// App holds all shared dependencies and the Echo HTTP server instance.
// Created once at startup in main.go and used to register all routes.
type App struct {
	// Config holds the loaded application configuration.
	Config *config.Config

	// DB is the MariaDB or SQLite pool shared by all plugins.
	DB *sql.DB

	// Redis holds login sessions.
	Redis *redis.Client

	// Echo is the HTTP server instance.
	Echo *echo.Echo

	// Sketches generates memory sketches in the background. Set by
	// RegisterRoutes.
	Sketches *sketch.Worker

	// Scheduler runs the sketch backfill; nil when the backfill is off.
	Scheduler *cron.Cron
}

// New creates an App and configures the Echo server with global middleware
// and error handling.
func New(cfg *config.Config, db *sql.DB, rdb *redis.Client) *App {
	e := echo.New()

	// We log our own startup line.
	e.HideBanner = true
	e.HidePort = true

	// c.RealIP() must be the client, not the reverse proxy, or login rate
	// limiting would throttle everyone behind the proxy together.
	middleware.TrustedProxies(e, middleware.DefaultTrustedProxies)

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Echo:   e,
	}

	app.setupMiddleware()
	e.HTTPErrorHandler = app.errorHandler
	e.Static("/static", "static")

	return app
}

// setupMiddleware registers global middleware. Order matters: recovery runs
// first, CSRF last.
func (a *App) setupMiddleware() {
	a.Echo.Use(middleware.Recovery())
	a.Echo.Use(middleware.RequestLogger())
	a.Echo.Use(middleware.SecurityHeaders())
	a.Echo.Use(middleware.CSRF())
}

// errorHandler maps AppError and echo.HTTPError to a response: JSON for API
// and fetch callers, a redirect to /login for a browser 401, and an error
// page otherwise.
func (a *App) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := defaultErrorMessage(code)

	var appErr *apperror.AppError
	var echoErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
		message = appErr.Message
		if appErr.Internal != nil {
			slog.Error("internal error",
				slog.String("type", appErr.Type),
				slog.String("message", appErr.Message),
				slog.Any("internal", appErr.Internal),
				slog.String("path", c.Request().URL.Path),
			)
		}
	case errors.As(err, &echoErr):
		code = echoErr.Code
		if msg, ok := echoErr.Message.(string); ok {
			message = msg
		} else {
			message = defaultErrorMessage(code)
		}
	default:
		slog.Error("unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Request().URL.Path),
		)
	}

	if middleware.WantsJSON(c) {
		c.JSON(code, map[string]string{
			"error":   http.StatusText(code),
			"message": message,
		})
		return
	}

	if code == http.StatusUnauthorized {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	if err := middleware.Render(c, code, pages.ErrorPage(code, message)); err != nil {
		slog.Error("rendering error page", slog.Any("error", err))
	}
}

// defaultErrorMessage returns a user-friendly message for common status
// codes when the error carried none.
func defaultErrorMessage(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "The request was invalid or cannot be processed."
	case http.StatusUnauthorized:
		return "You need to sign in to see this page."
	case http.StatusForbidden:
		return "You don't have permission to do that."
	case http.StatusNotFound:
		return "The page you're looking for doesn't exist."
	case http.StatusMethodNotAllowed:
		return "This action is not allowed."
	case http.StatusUnprocessableEntity:
		return "The submitted data could not be processed."
	case http.StatusTooManyRequests:
		return "You're making too many requests. Please slow down."
	case http.StatusServiceUnavailable:
		return "The service is temporarily unavailable. Please try again later."
	default:
		return "Something went wrong on our end. Please try again."
	}
}

// Start launches the background jobs and then serves HTTP until shutdown.
func (a *App) Start() error {
	if a.Sketches != nil {
		a.Sketches.Start()
	}
	if a.Scheduler != nil {
		a.Scheduler.Start()
	}

	addr := fmt.Sprintf(":%d", a.Config.Port)
	slog.Info("starting Reverie server",
		slog.String("addr", addr),
		slog.String("env", a.Config.Env),
		slog.String("db_driver", a.Config.Database.Driver),
		slog.String("sketch_provider", a.Config.Sketch.Provider),
	)
	return a.Echo.Start(addr)
}

// Shutdown drains HTTP requests, then stops the scheduler and the sketch
// worker.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	if a.Scheduler != nil {
		select {
		case <-a.Scheduler.Stop().Done():
		case <-ctx.Done():
		}
	}
	if a.Sketches != nil {
		a.Sketches.Stop()
	}
	return err
}
