package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/sqlite"

	// Reads migration files from disk.
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/keyxmakerx/reverie/internal/config"
)

// RunMigrations applies pending migrations from dir using the migrate
// driver that matches driverName. Already-applied versions are skipped, so
// it runs on every startup.
func RunMigrations(db *sql.DB, driverName, dir string) error {
	var (
		driver database.Driver
		err    error
	)
	switch driverName {
	case config.DriverMySQL:
		driver, err = mysql.WithInstance(db, &mysql.Config{})
	case config.DriverSQLite:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	default:
		return fmt.Errorf("no migration driver for %q", driverName)
	}
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, driverName, driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	slog.Info("migrations applied",
		slog.String("driver", driverName),
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
	)
	return nil
}
