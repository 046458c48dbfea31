// Package migration applies the versioned SQL schema with golang-migrate.
package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/xgrltd/storefront/internal/infrastructure/config"
)

//go:embed sql/*.sql
var embedded embed.FS

// EmbeddedDir is the directory inside Embedded holding the migrations.
const EmbeddedDir = "sql"

// Embedded returns the migrations compiled into the binary.
func Embedded() embed.FS {
	return embedded
}

// sqlDrivers maps config drivers to database/sql driver names
var sqlDrivers = map[string]string{
	"":         "sqlite3",
	"sqlite":   "sqlite3",
	"postgres": "postgres",
}

// Migrator moves the schema between versions
type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// OpenDB opens a dedicated database/sql handle for migrations. Closing the
// migrator closes it.
func OpenDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	name, ok := sqlDrivers[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	dsn := cfg.Path
	if name == "postgres" {
		dsn = cfg.DSN()
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", name, err)
	}
	return db, nil
}

// New returns a Migrator over db reading migrations from dir, or from the
// embedded set when dir is empty.
func New(db *sql.DB, driver, dir string, log *zap.Logger) (*Migrator, error) {
	target, name, err := instance(db, driver)
	if err != nil {
		return nil, err
	}

	var m *migrate.Migrate
	if dir != "" {
		m, err = migrate.NewWithDatabaseInstance("file://"+dir, name, target)
	} else {
		src, srcErr := iofs.New(embedded, EmbeddedDir)
		if srcErr != nil {
			return nil, fmt.Errorf("embedded migrations: %w", srcErr)
		}
		m, err = migrate.NewWithInstance("iofs", src, name, target)
	}
	if err != nil {
		return nil, fmt.Errorf("init migrate: %w", err)
	}
	return &Migrator{m: m, log: log.Named("migrate")}, nil
}

func instance(db *sql.DB, driver string) (database.Driver, string, error) {
	var (
		d   database.Driver
		err error
	)
	name, ok := sqlDrivers[driver]
	switch {
	case !ok:
		return nil, "", fmt.Errorf("unsupported database driver %q", driver)
	case name == "postgres":
		d, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		d, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	}
	if err != nil {
		return nil, "", fmt.Errorf("%s migrate driver: %w", name, err)
	}
	return d, name, nil
}

// apply runs one migrate operation. ErrNoChange is success.
func (m *Migrator) apply(op string, fn func() error, fields ...zap.Field) error {
	m.log.Info("migrate "+op, fields...)
	err := fn()
	if errors.Is(err, migrate.ErrNoChange) {
		m.log.Info("schema unchanged", zap.String("op", op))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", op, err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	m.log.Info("schema at version", zap.String("op", op), zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// Up applies every pending migration
func (m *Migrator) Up() error {
	return m.apply("up", m.m.Up)
}

// Down reverts every applied migration
func (m *Migrator) Down() error {
	return m.apply("down", m.m.Down)
}

// Steps moves n migrations, down when n is negative
func (m *Migrator) Steps(n int) error {
	return m.apply("steps", func() error { return m.m.Steps(n) }, zap.Int("steps", n))
}

// GoTo migrates up or down to version
func (m *Migrator) GoTo(version uint) error {
	return m.apply("goto", func() error { return m.m.Migrate(version) }, zap.Uint("target", version))
}

// Version is the applied version and its dirty flag. Zero means nothing has
// been applied.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return version, dirty, nil
}

// Force records version as applied and clean without running anything. It
// recovers from a migration that failed halfway.
func (m *Migrator) Force(version int) error {
	m.log.Warn("forcing schema version", zap.Int("version", version))
	if err := m.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

// Drop removes every table in the database
func (m *Migrator) Drop() error {
	m.log.Warn("dropping all tables")
	if err := m.m.Drop(); err != nil {
		return fmt.Errorf("drop: %w", err)
	}
	return nil
}

// Close releases the migration source and the handle passed to New
func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}
