package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/horizon-insight/cordis-etl/internal/export"
)

var (
	xlsxDir string
	xlsxOut string
)

var exportXLSXCmd = &cobra.Command{
	Use:   "export-xlsx",
	Short: "Bundle the processed tables into a single XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.Data.ProcessedDir
		if xlsxDir != "" {
			dir = xlsxDir
		}
		tables, err := readProcessed(dir)
		if err != nil {
			return err
		}
		if len(tables) == 0 {
			return fmt.Errorf("no processed tables found in %s", dir)
		}

		if err := export.WriteXLSX(xlsxOut, tables); err != nil {
			return err
		}
		fmt.Printf("Wrote %d sheets to %s\n", len(tables), xlsxOut)
		return nil
	},
}

func init() {
	exportXLSXCmd.Flags().StringVar(&xlsxDir, "dir", "", "processed data directory (default from config)")
	exportXLSXCmd.Flags().StringVar(&xlsxOut, "out", "cordis.xlsx", "output workbook path")
	rootCmd.AddCommand(exportXLSXCmd)
}
