// Package dbtest provides an in-memory SQLite database with the schema
// migrated, for integration tests in other packages.
package dbtest

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/iliyamo/musicuration-desk/internal/config"
	"github.com/iliyamo/musicuration-desk/internal/database"
)

var seq atomic.Int64

// Open returns a freshly migrated private database closed at test cleanup.
func Open(t testing.TB) *sql.DB {
	t.Helper()
	name := fmt.Sprintf("file:mcd_test_%d?mode=memory&cache=shared", seq.Add(1))
	db, err := database.Open(config.Config{DBDriver: database.DriverSQLite, DBName: name})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(context.Background(), db, database.DriverSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
