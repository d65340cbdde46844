package db

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	embeddedmigrations "github.com/terraincognita07/endocare/migrations"
	"gorm.io/gorm"
)

var (
	migrationFilePattern = regexp.MustCompile(`^(\d+)_.*\.sql$`)
	addColumnPattern     = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+([^\s]+)\s+ADD\s+COLUMN\s+([^\s]+)\b`)
)

type sqlMigration struct {
	Version    string
	Order      int
	Name       string
	Statements []string
}

// schemaMigration is one row of the history table. The table layout is shared
// with databases created before the Go backend existed.
type schemaMigration struct {
	Version   string    `gorm:"column:version;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	AppliedAt time.Time `gorm:"column:applied_at;not null"`
}

func (schemaMigration) TableName() string { return "schema_migrations" }

// Migrator applies forward-only SQL files from an fs.FS to a SQLite database.
type Migrator struct {
	database *gorm.DB
	files    fs.FS
	logger   logrus.FieldLogger
	now      func() time.Time
}

func NewMigrator(database *gorm.DB, files fs.FS, logger logrus.FieldLogger) *Migrator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Migrator{database: database, files: files, logger: logger, now: time.Now}
}

// MigrateSQLite brings database up to date with the embedded migrations and
// returns the file names applied by this call.
func MigrateSQLite(database *gorm.DB) ([]string, error) {
	return NewMigrator(database, embeddedmigrations.Files, nil).Apply()
}

// Pending lists migrations not yet recorded in the history table, in the
// order Apply would run them.
func (migrator *Migrator) Pending() ([]sqlMigration, error) {
	if err := migrator.ensureHistory(); err != nil {
		return nil, err
	}
	all, err := readEmbeddedMigrations(migrator.files)
	if err != nil {
		return nil, err
	}

	var versions []string
	if err := migrator.database.Model(&schemaMigration{}).Pluck("version", &versions).Error; err != nil {
		return nil, fmt.Errorf("load applied migration versions: %w", err)
	}
	done := make(map[string]bool, len(versions))
	for _, version := range versions {
		done[version] = true
	}

	pending := make([]sqlMigration, 0, len(all))
	for _, migration := range all {
		if !done[migration.Version] {
			pending = append(pending, migration)
		}
	}
	return pending, nil
}

func (migrator *Migrator) Apply() ([]string, error) {
	pending, err := migrator.Pending()
	if err != nil {
		return nil, err
	}

	applied := make([]string, 0, len(pending))
	for _, migration := range pending {
		if err := migrator.apply(migration); err != nil {
			return applied, err
		}
		migrator.logger.WithField("migration", migration.Name).Info("applied sqlite migration")
		applied = append(applied, migration.Name)
	}
	return applied, nil
}

func (migrator *Migrator) ensureHistory() error {
	const createTableSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`
	if err := migrator.database.Exec(createTableSQL).Error; err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}
	return nil
}

// apply runs one file and its history row in a single transaction.
func (migrator *Migrator) apply(migration sqlMigration) error {
	return migrator.database.Transaction(func(tx *gorm.DB) error {
		for _, statement := range migration.Statements {
			present, err := columnAlreadyAdded(tx, statement)
			if err != nil {
				return fmt.Errorf("inspect migration %s: %w", migration.Name, err)
			}
			if present {
				migrator.logger.WithField("migration", migration.Name).Debug("column already present, skipping statement")
				continue
			}
			if err := tx.Exec(statement).Error; err != nil {
				return fmt.Errorf("execute migration %s statement %q: %w", migration.Name, statement, err)
			}
		}

		row := schemaMigration{Version: migration.Version, Name: migration.Name, AppliedAt: migrator.now().UTC()}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("record migration %s: %w", migration.Name, err)
		}
		return nil
	})
}

func readEmbeddedMigrations(files fs.FS) ([]sqlMigration, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}

	migrations := make([]sqlMigration, 0, len(entries))
	byVersion := make(map[string]string, len(entries))
	for _, entry := range entries {
		matches := migrationFilePattern.FindStringSubmatch(entry.Name())
		if entry.IsDir() || matches == nil {
			continue
		}

		version := matches[1]
		if existing, exists := byVersion[version]; exists {
			return nil, fmt.Errorf("duplicate migration version %s in %s and %s", version, existing, entry.Name())
		}
		byVersion[version] = entry.Name()

		order, err := strconv.Atoi(version)
		if err != nil {
			return nil, fmt.Errorf("parse migration version from %s: %w", entry.Name(), err)
		}
		rawSQL, err := fs.ReadFile(files, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		statements := splitSQLStatements(string(rawSQL))
		if len(statements) == 0 {
			return nil, fmt.Errorf("migration %s: %w", entry.Name(), errEmptyMigration)
		}

		migrations = append(migrations, sqlMigration{
			Version:    version,
			Order:      order,
			Name:       entry.Name(),
			Statements: statements,
		})
	}

	sort.SliceStable(migrations, func(i, j int) bool {
		return migrations[i].Order < migrations[j].Order
	})
	return migrations, nil
}

var errEmptyMigration = errors.New("no SQL statements")

func splitSQLStatements(sqlText string) []string {
	statements := make([]string, 0)
	for _, rawPart := range strings.Split(sqlText, ";") {
		if statement := strings.TrimSpace(rawPart); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

// columnAlreadyAdded reports whether statement is an ADD COLUMN for a column
// the table already has, as happens when an older backend added it outside
// the history table.
func columnAlreadyAdded(tx *gorm.DB, statement string) (bool, error) {
	matches := addColumnPattern.FindStringSubmatch(statement)
	if matches == nil {
		return false, nil
	}
	return tableHasColumn(tx, unquoteIdentifier(matches[1]), unquoteIdentifier(matches[2]))
}

func tableHasColumn(tx *gorm.DB, table string, column string) (bool, error) {
	columns, err := tx.Migrator().ColumnTypes(table)
	if err != nil {
		return false, fmt.Errorf("load columns of %s: %w", table, err)
	}
	for _, existing := range columns {
		if strings.EqualFold(existing.Name(), column) {
			return true, nil
		}
	}
	return false, nil
}

func unquoteIdentifier(identifier string) string {
	return strings.Trim(identifier, "\"`[]")
}
