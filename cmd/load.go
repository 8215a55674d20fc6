package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/horizon-insight/cordis-etl/internal/load"
)

var loadDir string

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load the processed star schema into the configured datastore",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		dir := cfg.Data.ProcessedDir
		if loadDir != "" {
			dir = loadDir
		}
		tables, err := readProcessed(dir)
		if err != nil {
			return err
		}

		if cfg.Store.Driver == "sqlite" {
			sink, err := load.NewSQLiteSink(cfg.Store.SQLitePath)
			if err != nil {
				return err
			}
			defer sink.Close()
			if err := sink.Migrate(ctx); err != nil {
				return err
			}
			n, err := sink.LoadAll(ctx, tables)
			if err != nil {
				return err
			}
			fmt.Printf("Loaded %d rows into %s\n", n, cfg.Store.SQLitePath)
			return nil
		}

		pool, err := storePool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		runlog := load.NewRunLog(pool)
		last, err := runlog.LastSuccess(ctx, "load")
		if err != nil {
			return err
		}
		if last != nil {
			zap.L().Info("previous successful load", zap.Time("started_at", *last))
		}

		runID, err := runlog.Start(ctx, "load")
		if err != nil {
			return err
		}

		loader := load.NewLoader(pool, load.Options{
			BatchSize:     cfg.Load.BatchSize,
			BatchesPerSec: cfg.Load.BatchesPerSec,
		})
		n, err := loader.LoadAll(ctx, tables)
		if err != nil {
			if failErr := runlog.Fail(ctx, runID, err.Error()); failErr != nil {
				zap.L().Warn("could not record failed run", zap.Error(failErr))
			}
			return err
		}

		if err := runlog.Complete(ctx, runID, &load.RunResult{
			RowsLoaded: n,
			Metadata:   map[string]any{"tables": len(tables)},
		}); err != nil {
			return err
		}

		fmt.Printf("Loaded %d rows across %d tables (run %s)\n", n, len(tables), runID)
		return nil
	},
}

func init() {
	loadCmd.Flags().StringVar(&loadDir, "dir", "", "processed data directory (default from config)")
	rootCmd.AddCommand(loadCmd)
}
