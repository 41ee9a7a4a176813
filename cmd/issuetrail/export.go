package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/issuetrail/issuetrail/internal/config"
	"github.com/issuetrail/issuetrail/internal/export"
	"github.com/issuetrail/issuetrail/internal/timeline"
)

// newExportCmd creates the export subcommand.
func newExportCmd() *cobra.Command {
	var filter string
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "export <issue-key>",
		Short: "Export the activity timeline to CSV or Excel",
		Long:  "Fetch the activity timeline of a Jira issue and write it to a CSV or Excel file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			issueKey := args[0]
			if !timeline.ValidFilter(filter) {
				return fmt.Errorf("invalid filter %q: must be one of %s", filter, strings.Join(timeline.FilterTokens(), ", "))
			}
			if format != "csv" && format != "xlsx" {
				return fmt.Errorf("invalid format %q: must be 'csv' or 'xlsx'", format)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			agg, err := newAggregator(cfg, newLogger(cfg))
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), fetchTimeout)
			defer cancel()

			bar := newSpinner(fmt.Sprintf("Fetching activity for %s...", issueKey))
			env := agg.Aggregate(ctx, timeline.Request{IssueKey: issueKey, Filter: timeline.FilterValue(filter)})
			finishBar(bar)

			var path string
			switch format {
			case "csv":
				path, err = export.NewCSVExporter(output).Export(env, issueKey)
			case "xlsx":
				path, err = export.NewExcelExporter(output).Export(env, issueKey)
			}
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", env.Total, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "Time window (all, 24h, 7d, 30d, 6m, 1y)")
	cmd.Flags().StringVar(&format, "format", "csv", "Export format (csv or xlsx)")
	cmd.Flags().StringVarP(&output, "output", "o", "exports", "Output directory")

	return cmd
}
