package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/issuetrail/issuetrail/internal/config"
	"github.com/issuetrail/issuetrail/internal/server"
)

// newServeCmd creates the serve subcommand.
func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard panel API",
		Long:  "Start an HTTP server exposing the activity endpoint consumed by the dashboard panel.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			agg, err := newAggregator(cfg, logger)
			if err != nil {
				return err
			}

			if addr == "" {
				addr = cfg.Server.Addr()
			}

			httpServer := &http.Server{
				Addr:    addr,
				Handler: server.New(agg, logger),
			}

			go func() {
				logger.Info("server listening", "addr", addr)
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("server error", "error", err)
				}
			}()

			waitForShutdown(logger, httpServer)
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to the configured host:port)")

	return cmd
}

func waitForShutdown(logger *slog.Logger, httpServer *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
