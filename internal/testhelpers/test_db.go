package testhelpers

import (
	"fmt"
	"strings"
	"testing"

	"testadmin/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	openSQLite    = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	}
	migrateSchema = func(db *gorm.DB) error { return db.AutoMigrate(&models.Category{}, &models.Question{}) }
	dropTableFn   = func(db *gorm.DB, model any) error { return db.Migrator().DropTable(model) }
)

// SetupTestDB creates an isolated in-memory SQLite catalog database for tests.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := openSQLite(dsn)
	if err != nil {
		panic(fmt.Sprintf("failed to open test database: %v", err))
	}
	if err := migrateSchema(db); err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// DropTable removes a catalog table to force repository errors.
func DropTable(t *testing.T, db *gorm.DB, model any) {
	t.Helper()
	if err := dropTableFn(db, model); err != nil {
		panic(fmt.Sprintf("failed to drop table: %v", err))
	}
}
