package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spent/internal/cli"
	"github.com/Veraticus/spent/internal/config"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version and seed
the default categories.

Every other command does this on start, so running it by hand is only needed
to prepare a database ahead of time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			slog.Info("Starting database migration", "database", config.DatabasePath())

			return withApp(cmd, func(_ context.Context, _ *app) error {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Database is up to date: "+config.DatabasePath()))
				return nil
			})
		},
	}
}
