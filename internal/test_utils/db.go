package test_utils

import (
	"database/sql"
	"testing"

	"github.com/placementcell/placementcell/internal/config"
	"github.com/placementcell/placementcell/internal/database"
)

// SetupTestDB opens an isolated in-memory sqlite database with the full
// schema applied. It goes through the same Open/Migrate pair production
// uses, so repository tests exercise the real driver setup and migration
// files rather than a parallel bootstrap.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg := config.Database{Driver: "sqlite", Path: ":memory:"}
	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("could not open in-memory database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	if err := database.Migrate(db, cfg); err != nil {
		t.Fatalf("could not apply migrations: %v", err)
	}
	return db
}
