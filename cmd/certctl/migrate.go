package main

import (
	"errors"

	"github.com/spf13/cobra"

	pg "certforge/internal/adapters/postgres"
	"certforge/internal/config"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	var databaseURL string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := root.logger()
			if err != nil {
				return err
			}
			if databaseURL == "" {
				cfg, err := config.Load(config.Path())
				if err != nil {
					return err
				}
				databaseURL = cfg.DatabaseURL
			}
			if databaseURL == "" {
				return errors.New("no database: pass --database-url or set DATABASE_URL")
			}
			ctx := cmd.Context()
			db, err := pg.Connect(ctx, databaseURL, 2)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := pg.Migrate(ctx, db); err != nil {
				return err
			}
			log.Info("Migrations applied")
			return nil
		},
	}
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Postgres connection URL (defaults to DATABASE_URL)")
	return cmd
}
