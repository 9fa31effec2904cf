// Package migration applies versioned SQL migrations from an embedded
// filesystem with golang-migrate.
//
// Backends supply a DriverFunc for their database:
//
//	//go:embed migrations/*.sql
//	var migrationsFS embed.FS
//
//	driverFunc := func(db *sql.DB) (database.Driver, error) {
//	    return migratesqlite.WithInstance(db, &migratesqlite.Config{})
//	}
//
//	err := migration.Up(db, migrationsFS, "migrations", driverFunc)
package migration

import (
	"database/sql"
	stderrors "errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// DriverFunc creates a migrate database driver from sql.DB.
type DriverFunc func(*sql.DB) (database.Driver, error)

// Up runs all pending migrations. No pending migration is not an error.
func Up(db *sql.DB, fsys fs.FS, path string, driverFunc DriverFunc) error {
	m, err := newMigrator(db, fsys, path, driverFunc)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !stderrors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Down rolls back every migration.
func Down(db *sql.DB, fsys fs.FS, path string, driverFunc DriverFunc) error {
	m, err := newMigrator(db, fsys, path, driverFunc)
	if err != nil {
		return err
	}
	if err := m.Down(); err != nil && !stderrors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// Version returns the applied migration version and dirty flag. A database
// without migrations reports version 0.
func Version(db *sql.DB, fsys fs.FS, path string, driverFunc DriverFunc) (uint, bool, error) {
	m, err := newMigrator(db, fsys, path, driverFunc)
	if err != nil {
		return 0, false, err
	}
	v, dirty, err := m.Version()
	if stderrors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// newMigrator never closes m; that would close the shared sql.DB.
func newMigrator(db *sql.DB, fsys fs.FS, path string, driverFunc DriverFunc) (*migrate.Migrate, error) {
	driver, err := driverFunc(db)
	if err != nil {
		return nil, fmt.Errorf("create database driver: %w", err)
	}
	source, err := iofs.New(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("create iofs source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "database", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}
