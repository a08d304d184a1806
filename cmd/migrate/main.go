package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"
	"github.com/saeid-a/ClinicAgendaBack/internal/database"
	"github.com/saeid-a/ClinicAgendaBack/pkg/logger"
	"github.com/spf13/cobra"
)

func main() {
	log := logger.New(os.Getenv("LOG_LEVEL"))
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found")
	}

	if err := newRootCmd(log).Execute(); err != nil {
		log.WithError(err).Error("migration failed")
		os.Exit(1)
	}
}

func newRootCmd(log *logger.Logger) *cobra.Command {
	var dbURL string
	var dir string

	openMigrator := func() (*migrate.Migrate, error) {
		if dbURL == "" {
			dbURL = os.Getenv("DB_URL")
		}
		if dbURL == "" {
			return nil, errors.New("DB_URL environment variable is required")
		}
		if dir == "" {
			found, err := database.FindMigrationsDir()
			if err != nil {
				return nil, err
			}
			dir = found
		}
		return database.NewMigrator(dbURL, dir)
	}

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the clinic agenda database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbURL, "db-url", "", "database URL (defaults to DB_URL)")
	root.PersistentFlags().StringVar(&dir, "path", "", "migrations directory (searched for when empty)")

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openMigrator()
			if err != nil {
				return err
			}
			defer m.Close()
			if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return err
			}
			log.Info("Migration up successful")
			return nil
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations (all of them unless --steps is set)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openMigrator()
			if err != nil {
				return err
			}
			defer m.Close()
			if steps > 0 {
				err = m.Steps(-steps)
			} else {
				err = m.Down()
			}
			if err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return err
			}
			log.Info("Migration down successful")
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 0, "number of migrations to roll back")
	root.AddCommand(down)

	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openMigrator()
			if err != nil {
				return err
			}
			defer m.Close()
			version, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Set the schema version without running migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			m, err := openMigrator()
			if err != nil {
				return err
			}
			defer m.Close()
			if err := m.Force(version); err != nil {
				return err
			}
			log.WithField("version", version).Info("Migration version forced")
			return nil
		},
	})

	return root
}
