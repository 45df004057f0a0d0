package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"turntable/internal/history"
	"turntable/internal/pipeline"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent pipeline runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run ledger: %w", err)
			}
			defer store.Close()

			records, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}

			headers := []string{"ID", "RUN", "MODE", "QUALITY", "SIZE", "STATUS", "STARTED", "DURATION"}
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					fmt.Sprintf("%d", rec.ID),
					rec.Label,
					rec.Mode,
					rec.Quality,
					fmt.Sprintf("%dx%d", rec.Width, rec.Height),
					rec.Status,
					formatStarted(rec.StartedAt),
					formatRunDuration(rec),
				})
			}
			aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	return cmd
}

func formatStarted(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04")
}

func formatRunDuration(rec history.Record) string {
	if rec.Status == history.StatusRunning || rec.Duration <= 0 {
		return "-"
	}
	return pipeline.FormatDuration(rec.Duration)
}
