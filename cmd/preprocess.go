package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/horizon-insight/cordis-etl/internal/pipeline"
)

var (
	preprocessRawDir    string
	preprocessInterim   string
	preprocessProcessed string
	preprocessDelimiter string
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Ingest, clean, enrich, and export the raw CORDIS files",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := pipeline.Options{
			RawDir:       cfg.Data.RawDir,
			InterimDir:   cfg.Data.InterimDir,
			ProcessedDir: cfg.Data.ProcessedDir,
			Delimiter:    cfg.Data.DelimiterRune(),
			Charset:      cfg.Data.Charset,
		}
		if preprocessRawDir != "" {
			opts.RawDir = preprocessRawDir
		}
		if preprocessInterim != "" {
			opts.InterimDir = preprocessInterim
		}
		if preprocessProcessed != "" {
			opts.ProcessedDir = preprocessProcessed
		}
		if preprocessDelimiter != "" {
			opts.Delimiter = []rune(preprocessDelimiter)[0]
		}

		res, err := pipeline.Run(cmd.Context(), opts)
		if err != nil {
			return err
		}

		dropped := 0
		for _, bad := range res.BadRows {
			dropped += len(bad)
		}
		fmt.Printf("Processed %d projects into %d tables (%d irreparable rows dropped)\n",
			len(res.Dataset.Projects), len(res.Tables), dropped)
		for _, v := range res.Violations {
			if v.Absent {
				fmt.Printf("  contract violation: table %s not produced\n", v.Table)
				continue
			}
			fmt.Printf("  contract violation: table %s missing=%v extra=%v\n", v.Table, v.Missing, v.Extra)
		}
		return nil
	},
}

func init() {
	preprocessCmd.Flags().StringVar(&preprocessRawDir, "raw", "", "raw data directory (default from config)")
	preprocessCmd.Flags().StringVar(&preprocessInterim, "interim", "", "interim output directory")
	preprocessCmd.Flags().StringVar(&preprocessProcessed, "processed", "", "processed output directory")
	preprocessCmd.Flags().StringVar(&preprocessDelimiter, "delimiter", "", "force a delimiter instead of sniffing per file")
	rootCmd.AddCommand(preprocessCmd)
}
