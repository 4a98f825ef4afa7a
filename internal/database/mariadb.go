// Package database opens the SQL and Redis connections Reverie runs on.
// MariaDB is the server backend; SQLite serves single-user local installs
// and repository tests. Connections are opened once at startup and injected
// everywhere else.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	// Registers the "mysql" driver.
	_ "github.com/go-sql-driver/mysql"

	"github.com/keyxmakerx/reverie/internal/config"
)

// Open connects to whichever backend cfg.Driver names.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return NewSQLite(cfg.SQLitePath)
	case config.DriverMySQL:
		return NewMariaDB(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewMariaDB opens a pooled MariaDB connection and waits for the server to
// answer. The container may start before the database does, so the ping is
// retried with exponential backoff.
func NewMariaDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening mariadb connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := pingWithRetry("mariadb", 10, db.PingContext); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// pingWithRetry calls ping until it succeeds or attempts run out, doubling
// the wait between tries up to 30s.
func pingWithRetry(name string, attempts int, ping func(context.Context) error) error {
	backoff := time.Second
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = ping(ctx)
		cancel()
		if err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		slog.Warn(name+" not ready, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("backoff", backoff),
			slog.Any("error", err),
		)
		time.Sleep(backoff)
		backoff = min(backoff*2, 30*time.Second)
	}
	return fmt.Errorf("pinging %s after %d attempts: %w", name, attempts, err)
}
