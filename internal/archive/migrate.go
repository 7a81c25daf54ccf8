package archive

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	mpostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	msqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// NewMigrator builds a migrator over the embedded migrations for db.
// The migrations ship inside the binary, so no external files are
// needed at runtime.
func NewMigrator(db *sql.DB, driverName string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}

	var drv database.Driver
	switch driverName {
	case "sqlite":
		drv, err = msqlite.WithInstance(db, &msqlite.Config{})
	case "postgres":
		drv, err = mpostgres.WithInstance(db, &mpostgres.Config{})
	default:
		return nil, fmt.Errorf("no migration driver for %q", driverName)
	}
	if err != nil {
		return nil, fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driverName, drv)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// Migrate applies all pending schema migrations to db. Stores run this
// on open; the migrate command runs it standalone for operators who
// want schema changes applied out of band.
func Migrate(db *sql.DB, driverName string) error {
	m, err := NewMigrator(db, driverName)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
