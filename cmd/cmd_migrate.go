package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ghcnd-server/internal/app"
	db "ghcnd-server/internal/db"
)

func (c *cli) newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply query log schema migrations",
		Long:  `Create or upgrade the query log database at QUERY_LOG_PATH.`,
		Args:  cobra.NoArgs,
		RunE:  c.runMigrate,
	}
}

func (c *cli) runMigrate(cmd *cobra.Command, _ []string) error {
	if !c.cfg.QueryLogEnabled() {
		return errors.New("QUERY_LOG_PATH is not set")
	}

	conn, err := app.OpenQueryLog(cmd.Context(), c.cfg)
	if err != nil {
		return err
	}
	if err := db.Close(conn); err != nil {
		return fmt.Errorf("db close: %w", err)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "query log schema up to date: %s\n", c.cfg.QueryLogPath)
	return err
}
