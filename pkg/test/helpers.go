package test

import (
	"context"
	"log"
	"path/filepath"
	"testing"

	"hypertodo/internal/adapter/database/sqlite"
)

// InitTestDB opens a fresh migrated in-memory database. Every call gets its own data.
func InitTestDB() *sqlite.DB {
	db, err := sqlite.NewDB(context.Background(), sqlite.Options{DSN: ":memory:"})

	if err != nil {
		log.Fatal(err)
	}

	return db
}

// InitFileTestDB opens a migrated database file inside t.TempDir.
func InitFileTestDB(t *testing.T) *sqlite.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "todos.db")

	db, err := sqlite.NewDB(context.Background(), sqlite.Options{DSN: path})

	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}
