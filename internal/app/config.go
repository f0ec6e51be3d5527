package app

import (
	"io"

	"flewid/internal/config"
)

// Config holds the application configuration
type Config struct {
	// ConfigPath points at a single configuration directory. Empty uses
	// the layered user and project configuration.
	ConfigPath string

	// LogLevel overrides globalSettings.logLevel when set
	LogLevel string

	// Version is reported to MCP clients
	Version string

	// Server overrides. Zero values keep the configured settings.
	Transport string
	Host      string
	Port      int

	// Streams used by the stdio transport
	Stdin  io.Reader
	Stdout io.Writer

	// Loaded configuration
	FlewidConfig *config.FlewidConfig
}

// NewConfig creates a new application configuration
func NewConfig(configPath, logLevel, version string) *Config {
	return &Config{
		ConfigPath: configPath,
		LogLevel:   logLevel,
		Version:    version,
	}
}

// serverConfig returns the effective server settings after flag overrides.
func (c *Config) serverConfig() config.ServerConfig {
	cfg := c.FlewidConfig.Server
	if c.Transport != "" {
		cfg.Transport = c.Transport
	}
	if c.Host != "" {
		cfg.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Port = c.Port
	}
	return cfg
}
