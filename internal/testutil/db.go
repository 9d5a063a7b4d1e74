package testutil

import (
	"database/sql"
	"os"
	"testing"

	"github.com/minionops/minionbase/internal/config"
	"github.com/minionops/minionbase/internal/db"
	"github.com/minionops/minionbase/internal/pkg/dbutil"
)

// OpenTestDB connects to the mysql instance named by TEST_DB_HOST and
// applies the schema. Tests that need a live database call this and get
// skipped when no instance is available.
func OpenTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping mysql test")
	}
	dbutil.SetDialect(dbutil.DriverMySQL)
	conn, err := db.Open(config.DatabaseConfig{
		Driver:   dbutil.DriverMySQL,
		Host:     host,
		Port:     3306,
		User:     "minionbase",
		Password: "minionbase_pass",
		DBName:   "minionbase_test",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(conn, dbutil.DriverMySQL); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return conn, func() {
		_ = conn.Close()
	}
}
