package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	inframcp "github.com/felixgeelhaar/taskforce/internal/infrastructure/mcp"
	"github.com/felixgeelhaar/taskforce/internal/infrastructure/wiring"
)

var (
	mcpTransport string
	mcpAddr      string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Taskforce MCP server",
	Long: `Expose the decomposition tools to MCP clients. The tools call the
configured AI provider directly; no backend service is needed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := appState.logger.Named("mcp")
		svc, err := wiring.BuildDecomposeService(appState.cfg, logger)
		if err != nil {
			return NewCLIError("failed to initialise AI provider", "Check ai.provider in your config", err)
		}
		server := inframcp.NewServer(svc, logger)

		ctx, stop := interruptible(cmd.Context())
		defer stop()

		switch strings.ToLower(mcpTransport) {
		case "stdio", "":
			return server.ServeStdio(ctx)
		case "http":
			return server.ServeHTTP(ctx, mcpAddr)
		default:
			return fmt.Errorf("unsupported transport: %s", mcpTransport)
		}
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpTransport, "transport", "stdio", "Transport to use (stdio, http)")
	mcpCmd.Flags().StringVar(&mcpAddr, "addr", ":8080", "Address for the http transport")
	RootCmd.AddCommand(mcpCmd)
}
