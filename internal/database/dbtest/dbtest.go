// Package dbtest opens migrated SQLite databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"socialhub/backend/internal/database"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a fresh, migrated SQLite database that lives for the duration of t.
// The pool is pinned to one connection so every query sees the same in-memory database.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	return open(t, ":memory:", 1)
}

// OpenShared returns a migrated file-backed database that several connections
// can use at once. Transactions begin IMMEDIATE and wait on a busy timeout, so
// concurrent writers queue instead of failing with SQLITE_BUSY.
func OpenShared(t testing.TB, conns int) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") +
		"?_pragma=busy_timeout(10000)&_txlock=immediate"
	return open(t, dsn, conns)
}

func open(t testing.TB, dsn string, conns int) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(conns)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
