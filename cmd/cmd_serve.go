package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"ghcnd-server/internal/app"
)

func (c *cli) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long:  `Run the HTTP server until SIGINT or SIGTERM.`,
		Args:  cobra.NoArgs,
		RunE:  c.runServe,
	}
}

func (c *cli) runServe(cmd *cobra.Command, _ []string) error {
	slog.Info("starting",
		"app", appName,
		"version", version,
		"env", c.cfg.AppEnv,
		"log_level", c.cfg.LogLevel.String(),
	)

	err := app.Run(cmd.Context(), c.cfg)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	slog.Info("shutting down")
	return nil
}
