package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/reverie/internal/middleware"
	"github.com/keyxmakerx/reverie/internal/plugins/auth"
	"github.com/keyxmakerx/reverie/internal/plugins/home"
	"github.com/keyxmakerx/reverie/internal/plugins/journal"
	"github.com/keyxmakerx/reverie/internal/plugins/media"
	"github.com/keyxmakerx/reverie/internal/plugins/mood"
	"github.com/keyxmakerx/reverie/internal/plugins/todos"
	"github.com/keyxmakerx/reverie/internal/templates/layouts"
	"github.com/keyxmakerx/reverie/internal/widgets/dictation"
	"github.com/keyxmakerx/reverie/internal/widgets/sketch"
)

// RegisterRoutes builds every service and registers all routes. This is the
// single place where plugins are wired together.
func (a *App) RegisterRoutes() error {
	e := a.Echo
	cfg := a.Config

	// --- Auth ---
	userRepo := auth.NewUserRepository(a.DB)
	authService := auth.NewAuthService(userRepo, a.Redis, cfg.Auth.SessionTTL)
	authHandler := auth.NewHandler(authService, int(cfg.Auth.SessionTTL.Seconds()))
	auth.RegisterRoutes(e, authHandler)

	// Layout data for every rendered page.
	middleware.LayoutInjector = func(c echo.Context, ctx context.Context) context.Context {
		ctx = layouts.SetCSRFToken(ctx, middleware.GetCSRFToken(c))
		ctx = layouts.SetActivePath(ctx, c.Request().URL.Path)
		if s := auth.GetSession(c); s != nil {
			ctx = layouts.SetIsAuthenticated(ctx, true)
			ctx = layouts.SetUserID(ctx, s.UserID)
			ctx = layouts.SetUserEmail(ctx, s.Email)
			ctx = layouts.SetUserName(ctx, auth.GreetingName(s.Email))
		}
		return ctx
	}

	// --- Media ---
	mediaRepo := media.NewMediaRepository(a.DB)
	mediaService := media.NewMediaService(mediaRepo, cfg.Upload.MediaPath, cfg.Upload.MaxSize)
	media.RegisterRoutes(e, media.NewHandler(mediaService), authService)

	// --- Sketches ---
	entryRepo := journal.NewEntryRepository(a.DB)
	gen, err := sketch.NewGenerator(cfg.Sketch)
	if err != nil {
		return fmt.Errorf("configuring sketch provider: %w", err)
	}
	a.Sketches = sketch.NewWorker(gen, entryRepo, mediaService, sketch.Options{
		Workers:   cfg.Sketch.Workers,
		QueueSize: cfg.Sketch.QueueSize,
		Timeout:   cfg.Sketch.Timeout,
	})
	a.Scheduler, err = a.Sketches.ScheduleBackfill(cfg.Sketch.BackfillSchedule, cfg.Location())
	if err != nil {
		return err
	}

	// --- Journal ---
	journalService := journal.NewJournalService(entryRepo, mediaService, a.Sketches, cfg.Location())
	journal.RegisterRoutes(e, journal.NewHandler(journalService), authService)

	// --- Mood analytics ---
	moodService := mood.NewMoodService(journalService, nil)
	mood.RegisterRoutes(e, mood.NewHandler(moodService), authService)

	// --- Todos ---
	taskService := todos.NewTaskService(todos.NewTaskRepository(a.DB))
	todos.RegisterRoutes(e, todos.NewHandler(taskService), authService)

	// --- Home ---
	home.RegisterRoutes(e, home.NewHandler(journalService, taskService), authService)

	// --- Dictation ---
	dictation.RegisterRoutes(e, dictation.NewHandler(), authService)

	// --- Public ---
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusSeeOther, "/home")
	})
	e.GET("/healthz", a.healthz)

	// Anything else: anonymous visitors go to the login page, signed-in
	// users back home. The API keeps a real 404.
	e.RouteNotFound("/*", func(c echo.Context) error {
		if middleware.IsAPI(c) {
			return echo.ErrNotFound
		}
		if auth.GetSession(c) == nil {
			return c.Redirect(http.StatusSeeOther, "/login")
		}
		return c.Redirect(http.StatusSeeOther, "/home")
	}, auth.OptionalAuth(authService))

	return nil
}

// healthz reports whether the database and Redis answer.
func (a *App) healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok", "database": "ok", "redis": "ok"}
	code := http.StatusOK
	if err := a.DB.PingContext(ctx); err != nil {
		slog.Warn("health check: database", slog.Any("error", err))
		status["database"], status["status"], code = "unavailable", "degraded", http.StatusServiceUnavailable
	}
	if err := a.Redis.Ping(ctx).Err(); err != nil {
		slog.Warn("health check: redis", slog.Any("error", err))
		status["redis"], status["status"], code = "unavailable", "degraded", http.StatusServiceUnavailable
	}
	return c.JSON(code, status)
}
