package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"flewid/internal/app"
)

var (
	serveTransport string
	serveHost      string
	servePort      int
)

// serveCmd starts the MCP server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve flewid tools and templates over MCP",
	Long: `Starts an MCP server exposing the transform, filter, variable and
template tools. Catalog templates are also published as resources under
flewid://templates/<id> and stay in sync as templates are created,
updated or deleted.

Transports:
  streamable-http  HTTP endpoint at http://<host>:<port>/mcp (default)
  sse              Server-Sent Events at http://<host>:<port>/sse
  stdio            Standard input and output, for clients that spawn flewid

Configuration:
  flewid loads config.yaml from ~/.config/flewid and ./.flewid, with the
  project layer taking precedence. Use --config-path to load a single
  directory instead. Flags override the server section of the file.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe is the main entry point for the serve command
func runServe(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(configPath, logLevel, rootCmd.Version)
	cfg.Transport = serveTransport
	cfg.Host = serveHost
	cfg.Port = servePort

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Serve(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveTransport, "transport", "", "MCP transport (streamable-http, sse, stdio)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind HTTP transports to")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port for HTTP transports")
}
