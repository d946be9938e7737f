// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio-based MCP server over the loaded query catalog.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/chococrunch/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = withDataset(&cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout; logs go to stderr.

CONFIGURATION:

  {
    "mcpServers": {
      "chococrunch": {
        "command": "chococrunch",
        "args": ["mcp", "--csv", "/path/to/ChocoCrunch_Cleaned_Dataset.csv"]
      }
    }
  }

AVAILABLE TOOLS:

  list_queries   List catalog queries, optionally for one section
  run_query      Run a query by id and return its rows
  get_overview   Key metrics and dataset size

AVAILABLE RESOURCES:

  choco://catalog   Every query grouped by section
  choco://schema    Tables, columns and row counts
  choco://summary   Load report and column statistics`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(session)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.Serve(ctx)
	},
})

func init() {
	rootCmd.AddCommand(mcpCmd)
}
