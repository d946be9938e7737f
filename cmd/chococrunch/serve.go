// ABOUTME: CLI command for the web dashboard.
// ABOUTME: Serves the sectioned query pages, EDA charts and JSON API until interrupted.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/harperreed/chococrunch/internal/dashboard"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = withDataset(&cobra.Command{
	Use:   "serve",
	Short: "Start the web dashboard",
	Long: `Start the analytics dashboard.

PAGES:

  /                    Overview key metrics and distributions
  /section/{id}        product, nutrient, derived, joins, market
  /eda                 Histograms, scatter, correlation, NOVA and box plots
  /summary             Load report and per-column statistics

API:

  /api/queries              Every catalog query
  /api/queries/{id}         Run one query as JSON
  /api/queries/{id}/export  Download as json, yaml, markdown or csv
  /health                   Liveness check

EXAMPLES:

  chococrunch serve
  chococrunch serve --addr 0.0.0.0:8080
  chococrunch serve --db chococrunch.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.Addr = serveAddr
		}

		srv, err := dashboard.New(session)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		addr := cfg.GetAddr()
		color.Green("✓ Dashboard at http://%s", addr)
		return serve(ctx, srv, addr)
	},
})

var serve = func(ctx context.Context, srv *dashboard.Server, addr string) error {
	return srv.ListenAndServe(ctx, addr)
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default 127.0.0.1:8501)")
	rootCmd.AddCommand(serveCmd)
}
