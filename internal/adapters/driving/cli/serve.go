package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/insight/internal/metrics"
)

const shutdownTimeout = 5 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve metrics, health checks and MCP over HTTP",
	Long: `Starts a long-running HTTP server with:

  /metrics  Prometheus metrics
  /health   liveness
  /ready    200 once the model has loaded, 503 before
  /mcp      MCP streamable HTTP transport`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:9464", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}
	if svc.Metrics == nil {
		svc.Metrics = metrics.New()
	}
	prepareInBackground(cmd.Context(), svc)

	mcpServer, err := newMCPServer(svc)
	if err != nil {
		return err
	}

	server := metrics.NewServer(serveAddr, svc.Metrics, svc.Search.Ready)
	server.Handle("/mcp", mcpServer.Handler())

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()
	cmd.PrintErrf("Serving on http://%s (metrics, health, ready, mcp)\n", server.Addr())

	select {
	case err := <-errCh:
		return err
	case <-cmd.Context().Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
