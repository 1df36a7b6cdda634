// Package cli holds the cabinctl commands: schema migration, seeding the
// cabins, CSV export and staff account management.
package cli

import (
	"context"
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/iliyamo/cabin-booking/internal/config"
	"github.com/iliyamo/cabin-booking/internal/database"
)

// Env is what every command needs.  Tests replace OpenDB with sqlmock.
type Env struct {
	Config config.Config
	OpenDB func(ctx context.Context) (*sql.DB, error)
}

// NewEnv connects with the DB_* settings of cfg.
func NewEnv(cfg config.Config) *Env {
	return &Env{
		Config: cfg,
		OpenDB: func(ctx context.Context) (*sql.DB, error) { return database.Open(ctx, cfg.DSN()) },
	}
}

// RootCmd returns cabinctl with every subcommand registered.
func RootCmd(env *Env) *cobra.Command {
	root := &cobra.Command{
		Use:           "cabinctl",
		Short:         "Cabin booking administration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		MigrateCmd(env),
		SeedCmd(env),
		ExportCmd(env),
		UserCmd(env),
	)
	return root
}

// MigrateCmd creates the tables.  Statements are idempotent.
func MigrateCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := env.OpenDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			cmd.Println("Schema is up to date.")
			return nil
		},
	}
}
