package db

import (
	"fmt"
	"time"

	"github.com/terraincognita07/endocare/internal/config"
	"github.com/terraincognita07/endocare/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// OpenMySQL connects to a hosted MySQL server and auto-migrates the record
// tables. The embedded SQL migrations are SQLite specific.
func OpenMySQL(cfg config.MySQLConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.Username,
		cfg.Password,
		cfg.Address,
		cfg.Database,
	)

	database, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: newGormLogger()})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("mysql connection pool: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetimeSeconds > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeSeconds) * time.Second)
	}

	if err := MigrateRecordTables(database); err != nil {
		return nil, err
	}
	return database, nil
}

func MigrateRecordTables(database *gorm.DB) error {
	if err := database.AutoMigrate(
		&models.SleepLog{},
		&models.DietLog{},
		&models.MenstrualLog{},
		&models.SymptomsLog{},
		&models.Prediction{},
	); err != nil {
		return fmt.Errorf("auto-migrate record tables: %w", err)
	}
	return nil
}
