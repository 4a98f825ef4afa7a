package database

import (
	"database/sql"

	"github.com/go-sql-driver/mysql"

	"github.com/keyxmakerx/reverie/internal/config"
)

// Dialect reports which SQL flavour db speaks: config.DriverMySQL for
// MariaDB and config.DriverSQLite otherwise. Repositories use it for the
// few statements, such as upserts, that differ between the two.
func Dialect(db *sql.DB) string {
	if _, ok := db.Driver().(*mysql.MySQLDriver); ok {
		return config.DriverMySQL
	}
	return config.DriverSQLite
}
