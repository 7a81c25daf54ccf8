package cmd

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/nextlevelbuilder/tgvault/internal/archive"
	"github.com/nextlevelbuilder/tgvault/internal/config"
)

// openMigrationDB opens the configured archive database without going
// through the store (which would auto-migrate on open).
func openMigrationDB() (*sql.DB, string, error) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}

	switch cfg.Database.Driver {
	case "", config.DriverSQLite:
		db, err := sql.Open("sqlite", cfg.SQLitePath())
		if err != nil {
			return nil, "", fmt.Errorf("open sqlite: %w", err)
		}
		return db, config.DriverSQLite, nil
	case config.DriverPostgres:
		if cfg.Database.PostgresDSN == "" {
			return nil, "", fmt.Errorf("TGVAULT_POSTGRES_DSN environment variable is not set")
		}
		db, err := sql.Open("pgx", cfg.Database.PostgresDSN)
		if err != nil {
			return nil, "", fmt.Errorf("open postgres: %w", err)
		}
		return db, config.DriverPostgres, nil
	default:
		return nil, "", fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration management",
	}
	cmd.AddCommand(migrateUpCmd())
	cmd.AddCommand(migrateDownCmd())
	cmd.AddCommand(migrateVersionCmd())
	return cmd
}

func migrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, driver, err := openMigrationDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := archive.Migrate(db, driver); err != nil {
				return err
			}
			slog.Info("migration complete", "driver", driver)
			return nil
		},
	}
}

func migrateDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, driver, err := openMigrationDB()
			if err != nil {
				return err
			}
			defer db.Close()

			m, err := archive.NewMigrator(db, driver)
			if err != nil {
				return err
			}
			if err := m.Steps(-1); err != nil && err != migrate.ErrNoChange {
				return fmt.Errorf("migrate down: %w", err)
			}
			slog.Info("rolled back one migration", "driver", driver)
			return nil
		},
	}
}

func migrateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, driver, err := openMigrationDB()
			if err != nil {
				return err
			}
			defer db.Close()

			m, err := archive.NewMigrator(db, driver)
			if err != nil {
				return err
			}
			v, dirty, err := m.Version()
			if err == migrate.ErrNilVersion {
				fmt.Println("schema version: none (no migrations applied)")
				return nil
			}
			if err != nil {
				return fmt.Errorf("read schema version: %w", err)
			}
			fmt.Printf("schema version: %d (dirty: %t)\n", v, dirty)
			return nil
		},
	}
}
