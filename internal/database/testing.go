package database

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenTest returns an isolated in-memory database for a test. The sqlite
// driver translates unique violations to gorm.ErrDuplicatedKey just like the
// postgres one, so toggle/upsert race handling is exercised for real.
func OpenTest(t *testing.T, models ...any) *gorm.DB {
	t.Helper()

	// named shared-cache db: every pooled connection sees the same data,
	// while each test still gets its own database
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}
