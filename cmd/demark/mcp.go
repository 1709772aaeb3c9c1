package main

import (
	"fmt"
	"log"
	"os"

	"github.com/aretw0/demark/internal/cli"
	"github.com/aretw0/demark/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts Demark as an MCP Server.
This allows AI agents to strip markup and render response envelopes as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport := cfg.MCP.Transport
		if cmd.Flags().Changed("transport") {
			transport, _ = cmd.Flags().GetString("transport")
		}
		port := cfg.MCP.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		srv := mcp.NewServer(app.Normalizer, mcp.WithLogger(logger), mcp.WithMaxInputSize(cfg.Input.MaxSize))

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			logger.Info("Starting Demark MCP Server (Stdio)...")
			return srv.ServeStdio()
		case "sse":
			logger.Info("Starting Demark MCP Server (SSE)", "port", port)

			sc := cli.NewSignalContext(cmd.Context())
			defer sc.Cancel()

			if err := srv.ServeSSE(sc, port); err != nil {
				return cli.HandleExecutionError(err)
			}
			logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
