package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/aretw0/launchplan"
	"github.com/aretw0/launchplan/internal/cli"
	"github.com/aretw0/launchplan/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes launch plans to AI agents as MCP tools (list, describe, build, graph).

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		opts := optionsFrom(cmd)
		opts.DryRun = true
		logger := cli.CreateLogger(opts)

		a, err := cli.CreateEngine(cmd.Context(), opts, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := mcp.NewServer(a.Engine, launchplan.Version)

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(cmd.ErrOrStderr())
			logger.Info("starting launchplan MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			logger.Info("starting launchplan MCP server (sse)", "port", port)
			sigCtx := cli.NewSignalContext(cmd.Context())
			defer sigCtx.Cancel()

			if err := srv.ServeSSE(sigCtx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
