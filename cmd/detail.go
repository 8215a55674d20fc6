package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/horizon-insight/cordis-etl/internal/enrich"
	"github.com/horizon-insight/cordis-etl/internal/export"
	"github.com/horizon-insight/cordis-etl/internal/table"
)

var detailInterim string

var detailCmd = &cobra.Command{
	Use:   "detail <project-id-or-acronym>",
	Short: "Show the full enriched view of a single project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.Data.InterimDir
		if detailInterim != "" {
			dir = detailInterim
		}

		var tables enrich.Tables
		for name, dst := range map[string]**table.Table{
			"projects":      &tables.Projects,
			"organizations": &tables.Organizations,
			"topics":        &tables.Topics,
			"legal_basis":   &tables.LegalBasis,
			"sci_voc":       &tables.SciVoc,
			"deliverables":  &tables.Deliverables,
			"publications":  &tables.Publications,
			"web_items":     &tables.WebItems,
			"web_links":     &tables.WebLinks,
		} {
			t, err := readInterim(dir, name)
			if err != nil {
				return err
			}
			*dst = t
		}

		dataset, err := enrich.NewDataset(tables)
		if err != nil {
			return err
		}
		if err := dataset.Enrich(); err != nil {
			return err
		}

		det, err := dataset.ProjectDetail(args[0])
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(det, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

// readInterim loads one cleaned interim table. A table a run never produced
// comes back nil; an unreadable file is an error.
func readInterim(dir, name string) (*table.Table, error) {
	path := filepath.Join(dir, name+".csv")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return export.ReadCSV(path, ';')
}

func init() {
	detailCmd.Flags().StringVar(&detailInterim, "interim", "", "interim data directory (default from config)")
	rootCmd.AddCommand(detailCmd)
}
