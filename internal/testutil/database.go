// Package testutil holds helpers shared by package tests: an isolated sqlite
// database, snapshot and cache fixtures, and AppError assertions.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"cakebook/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var dbCounter atomic.Int64

// SetupTestDB opens a fresh named in-memory sqlite database with every
// model migrated. The pool is held to one connection, matching how the
// server runs sqlite, so worker goroutines in tests serialize their writes
// instead of failing with a locked table.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:cakebook_test_%d?mode=memory&cache=shared&_foreign_keys=on", dbCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("test database pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

// TeardownTestDB closes the connection, which drops the in-memory database.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("test database pool: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("close test database: %v", err)
	}
}
