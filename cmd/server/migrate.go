package main

import (
	"document-archive/internal/db"
	"fmt"

	"github.com/spf13/cobra"
)

func getMigrateCmd() *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Applies database migrations",
		Long:  "Creates or updates every table the archive uses.",
		RunE: func(cmd *cobra.Command, args []string) error {
			gdb, err := db.Connect(cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close(gdb)

			if err := db.Migrate(gdb); err != nil {
				return fmt.Errorf("failed to migrate schema: %w", err)
			}
			if seed {
				if _, err := db.SeedAdmin(gdb, logger, cfg.AdminEmail); err != nil {
					return fmt.Errorf("failed to seed admin: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database migration complete")
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed-admin", false, "create the ADMIN_EMAIL administrator if missing")
	return cmd
}
