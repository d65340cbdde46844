package db

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/glebarez/sqlite"
	embeddedmigrations "github.com/terraincognita07/endocare/migrations"
	"gorm.io/gorm"
)

func TestOpenSQLiteCreatesSchemaAndRecordsMigrations(t *testing.T) {
	t.Parallel()

	database, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "endocare.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = closeDatabase(database) })

	for _, table := range []string{"sleep_logs", "diet_logs", "menstrual_logs", "symptoms_logs", "predictions"} {
		hasOwner, err := tableHasColumn(database, table, "owner_id")
		if err != nil {
			t.Fatalf("inspect %s: %v", table, err)
		}
		if !hasOwner {
			t.Fatalf("expected %s.owner_id to exist", table)
		}
	}

	var applied int64
	if err := database.Raw(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied).Error; err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if applied != 3 {
		t.Fatalf("expected 3 applied migrations, got %d", applied)
	}
}

func TestMigrateSQLiteIsIdempotent(t *testing.T) {
	t.Parallel()

	database, err := OpenSQLite(filepath.Join(t.TempDir(), "endocare.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = closeDatabase(database) })

	appliedAgain, err := MigrateSQLite(database)
	if err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if len(appliedAgain) != 0 {
		t.Fatalf("expected no pending migrations, got %v", appliedAgain)
	}
}

func TestOpenSQLiteUpgradesLegacyDatabase(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "endocare.db")
	_ = closeDatabase(seedLegacyDatabase(t, dbPath))

	database, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("open legacy sqlite: %v", err)
	}
	t.Cleanup(func() { _ = closeDatabase(database) })

	var ownerID uint
	if err := database.Raw(`SELECT owner_id FROM sleep_logs WHERE date = ?`, "2025-08-01").Scan(&ownerID).Error; err != nil {
		t.Fatalf("load legacy row: %v", err)
	}
	if ownerID != 1 {
		t.Fatalf("expected legacy row to belong to owner 1, got %d", ownerID)
	}
}

func TestOpenSQLiteSkipsOwnerColumnAddedOutsideHistory(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "endocare.db")
	legacy := seedLegacyDatabase(t, dbPath)
	if err := legacy.Exec(`ALTER TABLE diet_logs ADD COLUMN owner_id INTEGER NOT NULL DEFAULT 1`).Error; err != nil {
		t.Fatalf("pre-add owner column: %v", err)
	}
	_ = closeDatabase(legacy)

	database, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("open sqlite with pre-added column: %v", err)
	}
	_ = closeDatabase(database)
}

func TestSplitSQLStatementsDropsEmptyParts(t *testing.T) {
	t.Parallel()

	statements := splitSQLStatements("CREATE TABLE a (id INTEGER);\n\n ;CREATE INDEX b ON a(id);  ")
	if len(statements) != 2 {
		t.Fatalf("expected 2 statements, got %d: %v", len(statements), statements)
	}
}

func TestReadEmbeddedMigrationsRejectsDuplicateVersions(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"001_init.sql":  {Data: []byte("CREATE TABLE a (id INTEGER);")},
		"001_again.sql": {Data: []byte("CREATE TABLE b (id INTEGER);")},
	}
	if _, err := readEmbeddedMigrations(files); err == nil {
		t.Fatal("expected duplicate version error")
	}
}

func TestReadEmbeddedMigrationsOrdersByVersion(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"010_late.sql":  {Data: []byte("SELECT 1;")},
		"002_early.sql": {Data: []byte("SELECT 1;")},
		"README.md":     {Data: []byte("ignored")},
	}
	migrations, err := readEmbeddedMigrations(files)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	if len(migrations) != 2 || migrations[0].Name != "002_early.sql" || migrations[1].Name != "010_late.sql" {
		t.Fatalf("unexpected migration order: %+v", migrations)
	}
}

func TestReadEmbeddedMigrationsRejectsEmptyFile(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{"001_blank.sql": {Data: []byte(" ;\n ; ")}}
	if _, err := readEmbeddedMigrations(files); !errors.Is(err, errEmptyMigration) {
		t.Fatalf("expected empty migration error, got %v", err)
	}
}

func TestMigratorAppliesOnlyPendingFiles(t *testing.T) {
	t.Parallel()

	database, err := openSQLiteFile(filepath.Join(t.TempDir(), "endocare.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = closeDatabase(database) })

	files := fstest.MapFS{
		"001_notes.sql":       {Data: []byte("CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT);")},
		"002_notes_owner.sql": {Data: []byte("ALTER TABLE notes ADD COLUMN owner_id INTEGER NOT NULL DEFAULT 1;")},
	}
	migrator := NewMigrator(database, files, nil)

	pending, err := migrator.Pending()
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending migrations, got %d", len(pending))
	}

	applied, err := migrator.Apply()
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(applied) != 2 || applied[0] != "001_notes.sql" || applied[1] != "002_notes_owner.sql" {
		t.Fatalf("unexpected applied migrations: %v", applied)
	}
	hasOwner, err := tableHasColumn(database, "notes", "owner_id")
	if err != nil || !hasOwner {
		t.Fatalf("expected notes.owner_id after apply, got %v (err %v)", hasOwner, err)
	}

	var rows []schemaMigration
	if err := database.Order("version").Find(&rows).Error; err != nil {
		t.Fatalf("load history: %v", err)
	}
	if len(rows) != 2 || rows[1].Version != "002" || rows[1].AppliedAt.IsZero() {
		t.Fatalf("unexpected history rows: %+v", rows)
	}

	pending, err = migrator.Pending()
	if err != nil {
		t.Fatalf("pending after apply: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected nothing pending, got %v", pending)
	}
}

func TestPendingSQLiteMigrationsDoesNotApply(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "endocare.db")
	pending, err := PendingSQLiteMigrations(dbPath)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	want := []string{"001_init.sql", "002_predictions.sql", "003_record_owner.sql"}
	if len(pending) != len(want) {
		t.Fatalf("expected %v, got %v", want, pending)
	}
	for index, name := range want {
		if pending[index] != name {
			t.Fatalf("position %d: expected %s, got %s", index, name, pending[index])
		}
	}

	pending, err = PendingSQLiteMigrations(dbPath)
	if err != nil {
		t.Fatalf("pending again: %v", err)
	}
	if len(pending) != len(want) {
		t.Fatalf("expected listing to leave the schema untouched, got %v", pending)
	}
}

func seedLegacyDatabase(t *testing.T, dbPath string) *gorm.DB {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	legacy, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{Logger: newGormLogger()})
	if err != nil {
		t.Fatalf("open legacy db: %v", err)
	}

	initSQL, err := embeddedmigrations.Files.ReadFile("001_init.sql")
	if err != nil {
		t.Fatalf("read init migration: %v", err)
	}
	for _, statement := range splitSQLStatements(string(initSQL)) {
		if err := legacy.Exec(statement).Error; err != nil {
			t.Fatalf("seed legacy schema: %v", err)
		}
	}
	if err := legacy.Exec(
		`INSERT INTO sleep_logs(date, duration, quality, disruptions, notes) VALUES (?, ?, ?, ?, ?)`,
		"2025-08-01", 7.5, 8, "none", "legacy",
	).Error; err != nil {
		t.Fatalf("seed legacy row: %v", err)
	}
	return legacy
}
