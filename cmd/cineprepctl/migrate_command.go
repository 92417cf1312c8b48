package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CinePrep/cineprep/config"
	"github.com/CinePrep/cineprep/internal/database"
	"github.com/CinePrep/cineprep/internal/migrations"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables and run pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDB(func(cfg *config.Config, db *sql.DB) error {
				log := ctx.logger()
				if err := database.InitializeDatabase(db); err != nil {
					return fmt.Errorf("initialize schema: %w", err)
				}
				if err := migrations.NewManager(log).RunMigrations(commandCtx(cmd), cfg, db); err != nil {
					return err
				}
				if err := database.EnsureFreePlan(commandCtx(cmd), db); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date")
				return nil
			})
		},
	}

	migrateCmd.AddCommand(newMigrateStatusCommand(ctx))
	return migrateCmd
}

func newMigrateStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the schema version and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDB(func(_ *config.Config, db *sql.DB) error {
				status, err := migrations.NewManager(ctx.logger()).Status(commandCtx(cmd), db)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				recorded := "none"
				if status.HasVersion {
					recorded = fmt.Sprintf("%.0f", status.DBVersion)
				}
				fmt.Fprintf(out, "Database version: %s\n", recorded)
				fmt.Fprintf(out, "Code version:     %.0f\n", status.CodeVersion)

				if len(status.Pending) == 0 {
					fmt.Fprintln(out, "No pending migrations")
					return nil
				}

				rows := make([][]string, 0, len(status.Pending))
				for _, m := range status.Pending {
					rows = append(rows, []string{fmt.Sprintf("%.0f", m.GetMajorVersion()), m.Description()})
				}
				fmt.Fprintln(out, renderTable([]string{"Version", "Description"}, rows, []columnAlignment{alignRight, alignLeft}))
				return nil
			})
		},
	}
}

func commandCtx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
