// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio-based MCP server for AI coaching assistants.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harperreed/makeweight/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout. Logs go to stderr.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "makeweight": {
        "command": "makeweight",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  classify_phase     Phase for a days-until value
  get_targets        Weight, water, and macro targets for a date
  weekly_plan        Seven-day plan around weigh-in
  get_rates          Overnight drift and practice sweat loss
  project_weigh_in   Projected weigh-in weight
  assess_safety      Safety of the remaining cut
  log_weight         Record a weigh-in
  list_logs          Recent weigh-ins
  delete_log         Delete a weigh-in

AVAILABLE RESOURCES:

  cut://today   Today's status, targets, and intake
  cut://plan    The seven-day plan`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(svc, logger)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
