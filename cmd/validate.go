package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/horizon-insight/cordis-etl/internal/schema"
)

var validateDir string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the processed tables against the fixed schema contract",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.Data.ProcessedDir
		if validateDir != "" {
			dir = validateDir
		}
		tables, err := readProcessed(dir)
		if err != nil {
			return err
		}

		violations, err := schema.Validate(tables)
		if err != nil {
			return err
		}
		if len(violations) == 0 {
			fmt.Printf("All %d tables match the contract\n", len(tables))
			return nil
		}
		for _, v := range violations {
			if v.Absent {
				fmt.Printf("%-24s not produced\n", v.Table)
				continue
			}
			fmt.Printf("%-24s missing=%v extra=%v\n", v.Table, v.Missing, v.Extra)
		}
		return fmt.Errorf("%d tables violate the contract", len(violations))
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateDir, "dir", "", "processed data directory (default from config)")
	rootCmd.AddCommand(validateCmd)
}
