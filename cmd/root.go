package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/horizon-insight/cordis-etl/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "cordis-etl",
	Short: "CORDIS research data ETL",
	Long:  "Ingests raw CORDIS CSV exports, repairs malformed rows, cleans and enriches the project data, and loads the resulting star schema into Postgres or SQLite.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
