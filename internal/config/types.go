package config

import (
	"time"
)

// FlewidConfig is the top-level configuration structure for flewid.
type FlewidConfig struct {
	GlobalSettings GlobalSettings  `yaml:"globalSettings"`
	Transform      TransformConfig `yaml:"transform"`
	Templates      TemplatesConfig `yaml:"templates"`
	Server         ServerConfig    `yaml:"server"`
}

// GlobalSettings holds process-wide preferences.
type GlobalSettings struct {
	LogLevel  string `yaml:"logLevel,omitempty"`  // debug, info, warn or error
	LogFormat string `yaml:"logFormat,omitempty"` // text or json
}

// TransformConfig limits transform snippet execution.
type TransformConfig struct {
	Timeout         time.Duration `yaml:"timeout,omitempty"`         // Wall-clock limit for procedural snippets
	MaxSnippetBytes int           `yaml:"maxSnippetBytes,omitempty"` // Largest accepted snippet
	MaxCallDepth    int           `yaml:"maxCallDepth,omitempty"`    // Deepest nested call a snippet may make
}

// TemplatesConfig controls the template catalog.
type TemplatesConfig struct {
	IncludeBuiltin *bool  `yaml:"includeBuiltin,omitempty"` // Load the templates shipped in the binary (default: true)
	Directory      string `yaml:"directory,omitempty"`      // Where authored templates are written (default: user config dir)
}

const (
	// MCPTransportStreamableHTTP is the streamable HTTP transport.
	MCPTransportStreamableHTTP = "streamable-http"
	// MCPTransportSSE is the Server-Sent Events transport.
	MCPTransportSSE = "sse"
	// MCPTransportStdio is the standard I/O transport.
	MCPTransportStdio = "stdio"
)

// ServerConfig defines how the MCP server is exposed.
type ServerConfig struct {
	Port      int    `yaml:"port,omitempty"`      // Port for HTTP transports (default: 8090)
	Host      string `yaml:"host,omitempty"`      // Host to bind to (default: localhost)
	Transport string `yaml:"transport,omitempty"` // streamable-http, sse or stdio (default: streamable-http)
}

// BuiltinTemplatesEnabled reports whether embedded templates are loaded.
func (t TemplatesConfig) BuiltinTemplatesEnabled() bool {
	return t.IncludeBuiltin == nil || *t.IncludeBuiltin
}

// GetDefaultConfig returns the configuration used when no files override it.
func GetDefaultConfig() FlewidConfig {
	return FlewidConfig{
		GlobalSettings: GlobalSettings{
			LogLevel:  "info",
			LogFormat: "text",
		},
		Transform: TransformConfig{
			Timeout:         5 * time.Second,
			MaxSnippetBytes: 64 * 1024,
			MaxCallDepth:    1000,
		},
		Server: ServerConfig{
			Port:      8090,
			Host:      "localhost",
			Transport: MCPTransportStreamableHTTP,
		},
	}
}
