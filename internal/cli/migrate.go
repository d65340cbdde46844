package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/endocare/internal/config"
	"github.com/terraincognita07/endocare/internal/db"
	"github.com/terraincognita07/endocare/internal/mongostore"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations for the configured backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, rootOpts, dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list pending sqlite migrations without applying them")

	return cmd
}

func runMigrate(cmd *cobra.Command, rootOpts *RootOptions, dryRun bool) error {
	rt, err := loadRuntime(rootOpts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	if dryRun {
		if rt.cfg.Store.Backend != config.BackendSQLite {
			return fmt.Errorf("--dry-run is only available for the %s backend", config.BackendSQLite)
		}
		pending, err := db.PendingSQLiteMigrations(rt.cfg.Store.SQLite.Path)
		if err != nil {
			return err
		}
		return printPending(cmd.OutOrStdout(), pending)
	}

	applied, err := migrateBackend(cmd.Context(), rt.cfg)
	if err != nil {
		return err
	}
	return printMigrations(cmd.OutOrStdout(), rt.cfg.Store.Backend, applied)
}

func migrateBackend(ctx context.Context, cfg *config.Config) ([]string, error) {
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		database, applied, err := db.OpenSQLiteWithMigrations(cfg.Store.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return applied, db.NewRecordRepository(config.BackendSQLite, database).Close()
	case config.BackendMySQL:
		database, err := db.OpenMySQL(cfg.Store.MySQL)
		if err != nil {
			return nil, err
		}
		return []string{"auto-migrate record tables"}, db.NewRecordRepository(config.BackendMySQL, database).Close()
	case config.BackendMongo:
		store, err := mongostore.Connect(ctx, cfg.Store.Mongo)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.EnsureIndexes(ctx)
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}

func printMigrations(out io.Writer, backend string, applied []string) error {
	if len(applied) == 0 {
		_, err := fmt.Fprintf(out, "%s schema is up to date\n", backend)
		return err
	}
	for _, name := range applied {
		if _, err := fmt.Fprintf(out, "applied %s\n", name); err != nil {
			return err
		}
	}
	return nil
}

func printPending(out io.Writer, pending []string) error {
	if len(pending) == 0 {
		_, err := fmt.Fprintln(out, "no pending migrations")
		return err
	}
	for _, name := range pending {
		if _, err := fmt.Fprintf(out, "pending %s\n", name); err != nil {
			return err
		}
	}
	return nil
}
