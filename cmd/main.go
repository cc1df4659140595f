package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ghcnd-server/internal/config"
	"ghcnd-server/internal/logging"
)

const appName = "ghcnd"

// Default version is "dev" if not set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli carries the configuration loaded before any subcommand runs.
type cli struct {
	cfg config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   appName,
		Short: "GHCN-Daily station locator and temperature aggregator",
		Long: `ghcnd finds GHCN-Daily weather stations around a point and aggregates
their daily temperature records into annual and seasonal averages.
Without a subcommand it runs the HTTP server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
		RunE: c.runServe,
	}

	root.AddCommand(
		c.newServeCmd(),
		c.newStationsCmd(),
		c.newTemperaturesCmd(),
		c.newTemperatureCmd(),
		c.newMigrateCmd(),
	)
	return root
}

// setup loads the environment and installs the default logger. The server
// logs to stdout; one-shot commands log to stderr so stdout stays JSON.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	c.cfg = cfg

	logOut := cmd.ErrOrStderr()
	if cmd == cmd.Root() || cmd.Name() == "serve" {
		logOut = cmd.OutOrStdout()
	}
	slog.SetDefault(logging.New(logOut, cfg, version, appName))
	return nil
}
