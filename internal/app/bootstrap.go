package app

import (
	"context"
	"fmt"
	"os"

	"flewid/internal/config"
	"flewid/pkg/logging"
)

// Application is the main application structure that bootstraps and runs flewid
type Application struct {
	config   *Config
	services *Services
}

// NewApplication loads configuration, sets up logging and registers every
// API handler. CLI commands use it before talking to the in-process server.
func NewApplication(cfg *Config) (*Application, error) {
	flewidCfg, err := loadConfiguration(cfg.ConfigPath)
	if err != nil {
		return nil, err
	}
	cfg.FlewidConfig = &flewidCfg

	level := flewidCfg.GlobalSettings.LogLevel
	if cfg.LogLevel != "" {
		level = cfg.LogLevel
	}
	// Logs go to stderr so command output and the stdio transport stay clean
	logging.Init(logging.ParseLevel(level), logging.Format(flewidCfg.GlobalSettings.LogFormat), os.Stderr)

	if cfg.ConfigPath != "" {
		logging.Debug("Bootstrap", "Loaded configuration from custom path: %s", cfg.ConfigPath)
	} else {
		logging.Debug("Bootstrap", "Loaded configuration using layered approach")
	}

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

func loadConfiguration(configPath string) (config.FlewidConfig, error) {
	if configPath != "" {
		cfg, err := config.LoadConfigFromPath(configPath)
		if err != nil {
			return config.FlewidConfig{}, fmt.Errorf("failed to load flewid configuration from path %s: %w", configPath, err)
		}
		return cfg, nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return config.FlewidConfig{}, fmt.Errorf("failed to load flewid configuration: %w", err)
	}
	return cfg, nil
}

// Services returns the initialized services
func (a *Application) Services() *Services {
	return a.services
}

// Config returns the effective application configuration
func (a *Application) Config() *Config {
	return a.config
}

// Serve runs the MCP server until ctx is cancelled or the process is signalled
func (a *Application) Serve(ctx context.Context) error {
	return runServeMode(ctx, a.config, a.services)
}
