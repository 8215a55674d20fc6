package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/horizon-insight/cordis-etl/internal/load"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the load run history",
	Long:  "Displays the run log recorded for past load stages.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := storePool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		runlog := load.NewRunLog(pool)
		entries, err := runlog.ListAll(ctx)
		if err != nil {
			return eris.Wrap(err, "status")
		}

		if len(entries) == 0 {
			zap.L().Info("no runs recorded, run 'load' to populate the datastore")
			return nil
		}

		formatRunEntries(os.Stdout, entries)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// formatRunEntries writes a tabular representation of run entries to w.
func formatRunEntries(out io.Writer, entries []load.RunEntry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTAGE\tSTATUS\tSTARTED\tDURATION\tROWS\tERROR")
	_, _ = fmt.Fprintln(w, "--\t-----\t------\t-------\t--------\t----\t-----")

	for _, e := range entries {
		dur := "-"
		if e.CompletedAt != nil {
			dur = e.CompletedAt.Sub(e.StartedAt).Round(time.Second).String()
		}

		errMsg := ""
		if e.Error != "" {
			errMsg = truncate(e.Error, 60)
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			e.ID,
			e.Stage,
			e.Status,
			e.StartedAt.Format("2006-01-02 15:04"),
			dur,
			e.RowsLoaded,
			errMsg,
		)
	}
	_ = w.Flush()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
