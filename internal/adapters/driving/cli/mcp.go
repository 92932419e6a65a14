package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lettergen/internal/adapters/driving/mcp"
	"github.com/custodia-labs/lettergen/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server exposes two tools, generate_letters and list_runs, and the
lettergen://runs resources. By default it communicates over stdio.
Use --port to serve over HTTP instead.

Settings changes made while the server runs are picked up on the next call.

Examples:
  # Stdio mode (default)
  lettergen mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  lettergen mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "lettergen": {
        "command": "/path/to/lettergen",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		Worker:    batchWorker,
		Validator: batchValidator,
		Settings:  settingsService,
		History:   historyService,
	}

	server, err := mcp.NewServer(ports, version)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	watchSettings(ctx)

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}

// watchSettings logs settings reloads until ctx is done.
func watchSettings(ctx context.Context) {
	if configWatcher == nil {
		return
	}
	reloads, err := configWatcher(ctx)
	if err != nil {
		logger.Warn("settings watcher unavailable: %v", err)
		return
	}
	go func() {
		for range reloads {
			logger.Info("settings reloaded")
			if settingsService == nil {
				continue
			}
			if err := settingsService.Validate(); err != nil {
				logger.Warn("reloaded settings are invalid: %v", err)
			}
		}
	}()
}
