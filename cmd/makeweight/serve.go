// ABOUTME: CLI command for serving the dashboard HTTP API.
// ABOUTME: Binds the configured listen address until interrupted.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/makeweight/internal/api"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard JSON API",
	Long: `Serve a JSON API for dashboards and coaching tools.

ENDPOINTS:

  GET    /api/phase             Today's phase and style
  GET    /api/targets?date=     Targets for a date (default today)
  GET    /api/plan              Seven-day plan
  GET    /api/rates             Overnight and practice loss rates
  GET    /api/safety            Safety assessment for today
  GET    /api/status            Full dashboard status
  GET    /api/logs?type=&limit= Weigh-ins, newest first
  POST   /api/logs              Record a weigh-in
  DELETE /api/logs/{id}         Delete a weigh-in
  GET    /api/tracking/{date}   Intake for a date

The address defaults to 127.0.0.1:8787 (config "listen" or MAKEWEIGHT_LISTEN).
CORS origins come from "allowed_origins" or MAKEWEIGHT_CORS_ORIGINS.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.Listen
		if serveListen != "" {
			addr = serveListen
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		color.Green("✓ Serving on http://%s", addr)
		return api.NewServer(svc, logger, cfg.Origins()).ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
