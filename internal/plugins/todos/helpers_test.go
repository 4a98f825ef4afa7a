package todos

import (
	"database/sql"
	"testing"

	"github.com/keyxmakerx/reverie/internal/database/dbtest"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db := dbtest.New(t)
	dbtest.SeedUser(t, db, "u1", "u1@example.com")
	dbtest.SeedUser(t, db, "u2", "u2@example.com")
	return db
}
