package db

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	embeddedmigrations "github.com/terraincognita07/endocare/migrations"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenSQLite opens the local database file, creating its directory, and
// brings the schema up to date.
func OpenSQLite(dbPath string) (*gorm.DB, error) {
	database, _, err := OpenSQLiteWithMigrations(dbPath)
	return database, err
}

// OpenSQLiteWithMigrations is OpenSQLite that also reports which migrations
// were applied by this call.
func OpenSQLiteWithMigrations(dbPath string) (*gorm.DB, []string, error) {
	database, err := openSQLiteFile(dbPath)
	if err != nil {
		return nil, nil, err
	}

	applied, err := MigrateSQLite(database)
	if err != nil {
		_ = closeDatabase(database)
		return nil, nil, fmt.Errorf("apply embedded migrations: %w", err)
	}

	return database, applied, nil
}

// PendingSQLiteMigrations names the embedded migrations the database at
// dbPath has not applied yet, without applying them.
func PendingSQLiteMigrations(dbPath string) ([]string, error) {
	database, err := openSQLiteFile(dbPath)
	if err != nil {
		return nil, err
	}
	defer closeDatabase(database)

	pending, err := NewMigrator(database, embeddedmigrations.Files, nil).Pending()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(pending))
	for _, migration := range pending {
		names = append(names, migration.Name)
	}
	return names, nil
}

func openSQLiteFile(dbPath string) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)", dbPath)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: newGormLogger()})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return database, nil
}

func newGormLogger() gormlogger.Interface {
	return gormlogger.New(
		logrus.StandardLogger(),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

func closeDatabase(database *gorm.DB) error {
	sqlDB, err := database.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
