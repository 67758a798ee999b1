package testutil

import (
	"testing"

	"github.com/windoze95/cookiify-api/internal/db"
	"github.com/windoze95/cookiify-api/internal/normalize"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewSQLiteDB opens a migrated in-memory database private to the test.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	// Every pooled connection would get its own :memory: database.
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.Migrate(database, normalize.New(nil, normalize.FirstPicker())); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}
