// Package main provides the issuetrail CLI entry point.
package main

import (
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/issuetrail/issuetrail/internal/config"
	"github.com/issuetrail/issuetrail/internal/jira"
	"github.com/issuetrail/issuetrail/internal/timeline"
)

var version = "dev"

func main() {
	// A .env file in the working directory is optional.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd creates the root command for the issuetrail CLI.
func newRootCmd() *cobra.Command {
	info, _ := debug.ReadBuildInfo()

	rootCmd := &cobra.Command{
		Use:     "issuetrail",
		Short:   "Follow the activity trail of a Jira issue",
		Long:    "Issuetrail fetches the changelog, comments and attachments of a Jira issue and presents them as a single timeline.",
		Version: resolveVersion(version, info),
	}

	rootCmd.SetVersionTemplate("issuetrail version {{.Version}}\n")

	rootCmd.AddCommand(newActivityCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

// newLogger builds the CLI logger. Log lines go to stderr so command
// output on stdout stays clean for piping.
func newLogger(cfg config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))
}

// newAggregator wires a tracker client and aggregator from the loaded config.
func newAggregator(cfg config.Config, logger *slog.Logger) (*timeline.Aggregator, error) {
	if err := cfg.ValidateJira(); err != nil {
		return nil, err
	}

	client := jira.NewClient(cfg.Jira.BaseURL, cfg.Jira.Email, cfg.Jira.APIToken,
		jira.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Jira.Timeout)}))

	return timeline.NewAggregator(client, timeline.WithLogger(logger)), nil
}

func newSpinner(description string) *progressbar.ProgressBar {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(15),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
	_ = bar.RenderBlank()
	return bar
}

func finishBar(bar *progressbar.ProgressBar) {
	if bar != nil {
		_ = bar.Finish()
	}
}
