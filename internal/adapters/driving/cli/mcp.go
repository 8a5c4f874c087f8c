package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/insight/internal/adapters/driving/mcp"
)

var mcpHTTPAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

Tools: search, journal (when a rephraser is configured) and stats.
Resources: insight://authors, insight://stats and
insight://sources/{sourceFile}.

By default the server speaks JSON-RPC over stdio. Use --http to serve the
streamable HTTP transport instead.

Examples:
  # Stdio mode (for desktop assistants)
  insight mcp

  # HTTP mode (for MCP Inspector, remote access)
  insight mcp --http localhost:8080

Assistant configuration:
  {
    "mcpServers": {
      "insight": {
        "command": "/path/to/insight",
        "args": ["mcp"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "serve over HTTP on this address instead of stdio")
	rootCmd.AddCommand(mcpCmd)
}

func newMCPServer(svc *Services) (*mcp.Server, error) {
	return mcp.NewServer(&mcp.Ports{
		Search:  svc.Search,
		Journal: svc.Journal,
		Index:   svc.Index,
	})
}

func runMCP(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}
	prepareInBackground(cmd.Context(), svc)

	server, err := newMCPServer(svc)
	if err != nil {
		return err
	}

	if mcpHTTPAddr != "" {
		cmd.PrintErrf("MCP server listening on http://%s\n", mcpHTTPAddr)
		return server.RunHTTP(cmd.Context(), mcpHTTPAddr)
	}
	return server.Run(cmd.Context())
}
