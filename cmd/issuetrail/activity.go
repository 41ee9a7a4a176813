package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/issuetrail/issuetrail/internal/config"
	"github.com/issuetrail/issuetrail/internal/display"
	"github.com/issuetrail/issuetrail/internal/timeline"
	"github.com/issuetrail/issuetrail/pkg/browser"
)

// fetchTimeout bounds a single aggregation round trip against the tracker.
const fetchTimeout = 60 * time.Second

// newActivityCmd creates the activity subcommand.
func newActivityCmd() *cobra.Command {
	var filter string
	var watch bool
	var asJSON bool
	var open bool

	cmd := &cobra.Command{
		Use:   "activity <issue-key>",
		Short: "Show the activity timeline of an issue",
		Long:  "Fetch the changelog, comments and attachments of a Jira issue and display them as a single timeline, newest first.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			issueKey := args[0]
			if !timeline.ValidFilter(filter) {
				return fmt.Errorf("invalid filter %q: must be one of %s", filter, strings.Join(timeline.FilterTokens(), ", "))
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			agg, err := newAggregator(cfg, newLogger(cfg))
			if err != nil {
				return err
			}

			if open {
				issueURL := strings.TrimRight(cfg.Jira.BaseURL, "/") + "/browse/" + issueKey
				if err := browser.Open(issueURL); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Could not open browser. Please visit:\n%s\n", issueURL)
				}
			}

			req := timeline.Request{IssueKey: issueKey, Filter: timeline.FilterValue(filter)}
			if watch {
				return watchActivity(cmd, agg, req, time.Duration(cfg.Watch.Interval), asJSON)
			}
			return showActivity(cmd.Context(), cmd, agg, req, asJSON)
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "Time window (all, 24h, 7d, 30d, 6m, 1y)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-poll on the configured interval until interrupted")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the activity envelope as JSON")
	cmd.Flags().BoolVar(&open, "open", false, "Open the issue in the browser")

	return cmd
}

// showActivity fetches the timeline once and prints it.
func showActivity(ctx context.Context, cmd *cobra.Command, agg *timeline.Aggregator, req timeline.Request, asJSON bool) error {
	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	bar := newSpinner(fmt.Sprintf("Fetching activity for %s...", req.IssueKey))
	env := agg.Aggregate(fetchCtx, req)
	finishBar(bar)

	if asJSON {
		out, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode envelope: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	formatter := display.NewTerminalFormatter()
	fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTimeline(env))
	if env.Total > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d records\n", env.Total)
	}
	return nil
}

// watchActivity re-fetches the timeline on a fixed interval until interrupted.
func watchActivity(cmd *cobra.Command, agg *timeline.Aggregator, req timeline.Request, interval time.Duration, asJSON bool) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := showActivity(ctx, cmd, agg, req, asJSON); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(cmd.OutOrStdout(), "Stopped watching.")
			return nil
		case <-ticker.C:
			fmt.Fprintf(cmd.OutOrStdout(), "\n--- refreshed at %s ---\n", time.Now().Format("15:04:05"))
			if err := showActivity(ctx, cmd, agg, req, asJSON); err != nil {
				return err
			}
		}
	}
}
