package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"zenflow/internal/logging"
	"zenflow/internal/server"

	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API over HTTP",
		Long: strings.TrimSpace(`
Serve items, the agenda and (for the sqlite and remote backends) the demand
board as a JSON API. Stops cleanly on SIGINT or SIGTERM.
`),
		Example: strings.TrimSpace(`
  zenflow serve
  zenflow serve --addr :8080 --backend sqlite
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			b, err := app.open(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			if b.board != nil {
				if err := b.board.Load(ctx); err != nil {
					return fmt.Errorf("loading areas: %w", err)
				}
			}
			if addr == "" {
				addr = b.cfg.Server.Addr
			}
			return server.New(b.items, b.board, logging.Log).Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr, 127.0.0.1:8080)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "zenflow version %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}
