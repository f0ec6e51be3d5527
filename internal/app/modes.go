package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"flewid/pkg/logging"
)

// runServeMode starts the MCP server and blocks until shutdown
func runServeMode(ctx context.Context, config *Config, services *Services) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := services.Server.Start(ctx); err != nil {
		logging.Error("Serve", err, "Failed to start MCP server")
		return err
	}

	logging.Info("Serve", "flewid %s is ready with %d templates. Press Ctrl+C to stop.",
		config.Version, len(services.TemplateStorage.ListTemplates()))

	<-ctx.Done()

	logging.Info("Serve", "Shutting down")
	return services.Server.Stop(context.Background())
}
