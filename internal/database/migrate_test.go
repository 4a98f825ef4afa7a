package database

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"

	"github.com/keyxmakerx/reverie/internal/config"
)

// migrationsRoot returns db/migrations relative to this test file.
func migrationsRoot(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine test file path")
	}
	dir := filepath.Join(filepath.Dir(thisFile), "..", "..", "db", "migrations")
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("migrations directory not found at %s: %v", dir, err)
	}
	return dir
}

func versions(t *testing.T, dir string) []string {
	t.Helper()
	ups, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		t.Fatalf("globbing %s: %v", dir, err)
	}
	var out []string
	for _, f := range ups {
		out = append(out, strings.TrimSuffix(filepath.Base(f), ".up.sql"))
	}
	sort.Strings(out)
	return out
}

// TestMigrations_UpDownPairs ensures every .up.sql has a matching .down.sql.
func TestMigrations_UpDownPairs(t *testing.T) {
	for _, driver := range []string{config.DriverMySQL, config.DriverSQLite} {
		dir := filepath.Join(migrationsRoot(t), driver)
		for _, v := range versions(t, dir) {
			if _, err := os.Stat(filepath.Join(dir, v+".down.sql")); err != nil {
				t.Errorf("%s: missing down migration for %s", driver, v)
			}
		}
	}
}

// TestMigrations_DriversInStep keeps the MariaDB and SQLite schemas at the
// same versions so either backend can be chosen at deploy time.
func TestMigrations_DriversInStep(t *testing.T) {
	root := migrationsRoot(t)
	mysqlVersions := versions(t, filepath.Join(root, config.DriverMySQL))
	sqliteVersions := versions(t, filepath.Join(root, config.DriverSQLite))

	if len(mysqlVersions) == 0 {
		t.Fatal("no migration files found")
	}
	if strings.Join(mysqlVersions, ",") != strings.Join(sqliteVersions, ",") {
		t.Errorf("migration sets differ:\nmysql:  %v\nsqlite: %v", mysqlVersions, sqliteVersions)
	}
}

// TestRunMigrations_SQLite applies the full schema to a temporary database
// and checks the tables the repositories use exist.
func TestRunMigrations_SQLite(t *testing.T) {
	db, err := NewSQLite(filepath.Join(t.TempDir(), "m.db"))
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	defer db.Close()

	dir := filepath.Join(migrationsRoot(t), config.DriverSQLite)
	if err := RunMigrations(db, config.DriverSQLite, dir); err != nil {
		t.Fatalf("first run: %v", err)
	}
	// A second run is a no-op.
	if err := RunMigrations(db, config.DriverSQLite, dir); err != nil {
		t.Fatalf("second run: %v", err)
	}

	for _, table := range []string{"users", "media_files", "journal_entries", "tasks"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestRunMigrations_UnknownDriver(t *testing.T) {
	if err := RunMigrations(nil, "postgres", "/nowhere"); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
