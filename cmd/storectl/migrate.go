package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xgrltd/storefront/internal/infrastructure/migration"
)

func newMigrateCmd(a *app) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the key-value schema with golang-migrate",
		Long: `Manage the key-value schema of the database storage backend.

Without --path the migrations compiled into the binary are used. The database
comes from the [database] section of the config, or STOREFRONT_DATABASE_*.`,
	}
	cmd.PersistentFlags().StringVar(&dir, "path", "", "Migrations directory (default: built-in migrations)")

	// withMigrator runs fn against the configured database
	withMigrator := func(fn func(m *migration.Migrator) error) error {
		cfg, err := a.config()
		if err != nil {
			return err
		}
		path := dir
		if path != "" {
			if path, err = filepath.Abs(path); err != nil {
				return err
			}
		}
		db, err := migration.OpenDB(&cfg.Database)
		if err != nil {
			return err
		}
		m, err := migration.New(db, cfg.Database.Driver, path, a.logger())
		if err != nil {
			_ = db.Close()
			return err
		}
		defer func() { _ = m.Close() }()
		return fn(m)
	}

	printVersion := func(m *migration.Migrator) error {
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		if version == 0 {
			fmt.Fprintln(a.out, "no migrations applied")
			return nil
		}
		fmt.Fprintf(a.out, "version %d (dirty: %t)\n", version, dirty)
		return nil
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return withMigrator(func(m *migration.Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				return printVersion(m)
			})
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return withMigrator(func(m *migration.Migrator) error {
				if err := m.Down(); err != nil {
					return err
				}
				return printVersion(m)
			})
		},
	}

	step := &cobra.Command{
		Use:   "step <n>",
		Short: "Apply n migrations, negative n rolls back",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return withMigrator(func(m *migration.Migrator) error {
				if err := m.Steps(n); err != nil {
					return err
				}
				return printVersion(m)
			})
		},
	}

	gotoCmd := &cobra.Command{
		Use:   "goto <version>",
		Short: "Migrate up or down to version",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			version, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return withMigrator(func(m *migration.Migrator) error {
				if err := m.GoTo(uint(version)); err != nil {
					return err
				}
				return printVersion(m)
			})
		},
	}

	version := &cobra.Command{
		Use:   "version",
		Short: "Show the applied migration version",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return withMigrator(printVersion)
		},
	}

	force := &cobra.Command{
		Use:   "force <version>",
		Short: "Set the version without running migrations, clearing a dirty state",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return withMigrator(func(m *migration.Migrator) error {
				if err := m.Force(v); err != nil {
					return err
				}
				return printVersion(m)
			})
		},
	}

	var confirm bool
	drop := &cobra.Command{
		Use:   "drop",
		Short: "Drop every table in the database",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if !confirm {
				return fmt.Errorf("drop needs --confirm")
			}
			return withMigrator(func(m *migration.Migrator) error {
				if err := m.Drop(); err != nil {
					return err
				}
				fmt.Fprintln(a.out, "dropped")
				return nil
			})
		},
	}
	drop.Flags().BoolVar(&confirm, "confirm", false, "Really drop everything")

	create := &cobra.Command{
		Use:   "create <name> [description]",
		Short: "Write the next migration file pair into --path",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			if dir == "" {
				return fmt.Errorf("create needs --path pointing at the migrations directory")
			}
			description := ""
			if len(args) > 1 {
				description = args[1]
			}
			mf, err := migration.CreateMigration(dir, args[0], description)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, mf.UpPath)
			fmt.Fprintln(a.out, mf.DownPath)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List available migrations",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			var (
				names []string
				err   error
			)
			if dir == "" {
				names, err = migration.ListMigrations(migration.Embedded(), migration.EmbeddedDir)
			} else {
				names, err = migration.ListMigrations(os.DirFS(dir), ".")
			}
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(a.out, name)
			}
			return nil
		},
	}

	cmd.AddCommand(up, down, step, gotoCmd, version, force, drop, create, list)
	return cmd
}
