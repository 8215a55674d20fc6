package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/horizon-insight/cordis-etl/internal/load"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations to the configured datastore",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cfg.Store.Driver == "sqlite" {
			sink, err := load.NewSQLiteSink(cfg.Store.SQLitePath)
			if err != nil {
				return err
			}
			defer sink.Close()
			if err := sink.Migrate(ctx); err != nil {
				return err
			}
			fmt.Printf("SQLite schema ready at %s\n", cfg.Store.SQLitePath)
			return nil
		}

		pool, err := storePool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := load.Migrate(ctx, pool); err != nil {
			return err
		}
		fmt.Println("Migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
