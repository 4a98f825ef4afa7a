// Package dbtest gives repository tests a migrated, throwaway SQLite
// database so they exercise real SQL instead of mocks.
package dbtest

import (
	"database/sql"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/keyxmakerx/reverie/internal/config"
	"github.com/keyxmakerx/reverie/internal/database"
)

// MigrationsRoot returns the absolute path of db/migrations.
func MigrationsRoot(t testing.TB) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine dbtest source path")
	}
	// internal/database/dbtest/dbtest.go -> project root is three dirs up.
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "db", "migrations")
}

// New opens a fresh SQLite file in t.TempDir and applies every migration.
func New(t testing.TB) *sql.DB {
	t.Helper()

	db, err := database.NewSQLite(filepath.Join(t.TempDir(), "reverie.db"))
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	dir := filepath.Join(MigrationsRoot(t), config.DriverSQLite)
	if err := database.RunMigrations(db, config.DriverSQLite, dir); err != nil {
		t.Fatalf("migrating sqlite: %v", err)
	}
	return db
}

// SeedUser inserts a bare user row so foreign keys are satisfied.
func SeedUser(t testing.TB, db *sql.DB, id, email string) {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO users (id, email, display_name, password_hash, created_at) VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		id, email, email, "x",
	)
	if err != nil {
		t.Fatalf("seeding user %s: %v", id, err)
	}
}
