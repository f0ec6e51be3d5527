package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"flewid/internal/api"
	"flewid/internal/api/tools"
	"flewid/internal/config"
	"flewid/pkg/logging"
)

const (
	serverName = "flewid"

	// templateURIPrefix is the resource URI prefix for catalog templates.
	templateURIPrefix = "flewid://templates/"
)

// Config describes how the server is exposed.
type Config struct {
	Host      string
	Port      int
	Transport string
	Version   string

	// Stdin and Stdout are used by the stdio transport. They default to
	// the process streams.
	Stdin  io.Reader
	Stdout io.Writer
}

// FlewidServer serves flewid's tools and template resources over MCP.
type FlewidServer struct {
	config  Config
	changes <-chan struct{}
	tools   *tools.APITools

	server           *server.MCPServer
	sseServer        *server.SSEServer
	streamableServer *server.StreamableHTTPServer

	// Lifecycle management
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.RWMutex

	// URIs of the template resources currently published
	resources map[string]struct{}
}

// NewFlewidServer creates a server. changes, when not nil, signals that the
// template catalog changed and resources must be republished.
func NewFlewidServer(cfg Config, changes <-chan struct{}) *FlewidServer {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 8090
	}
	if cfg.Transport == "" {
		cfg.Transport = config.MCPTransportStreamableHTTP
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}

	return &FlewidServer{
		config:    cfg,
		changes:   changes,
		tools:     tools.NewAPITools(),
		resources: make(map[string]struct{}),
	}
}

// Start creates the MCP server and starts the configured transport. It
// returns once the transport is listening in the background.
func (s *FlewidServer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.server != nil {
		s.mu.Unlock()
		return fmt.Errorf("server already started")
	}

	s.ctx, s.cancelFunc = context.WithCancel(ctx)
	s.server = newMCPServer(s.config.Version, s.tools)
	s.mu.Unlock()

	s.syncTemplateResources()

	if s.changes != nil {
		s.wg.Add(1)
		go s.monitorCatalogChanges()
	}

	switch s.config.Transport {
	case config.MCPTransportStreamableHTTP:
		return s.startStreamableHTTP()
	case config.MCPTransportSSE:
		return s.startSSE()
	case config.MCPTransportStdio:
		return s.startStdio()
	default:
		s.cancelFunc()
		return fmt.Errorf("unsupported transport %q (expected %s, %s or %s)", s.config.Transport,
			config.MCPTransportStreamableHTTP, config.MCPTransportSSE, config.MCPTransportStdio)
	}
}

// newMCPServer builds an MCP server with every API tool registered.
func newMCPServer(version string, at *tools.APITools) *server.MCPServer {
	mcpServer := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true), // listChanged
	)
	mcpServer.AddTools(at.ServerTools()...)
	return mcpServer
}

// NewInProcessServer returns an MCP server with the API tools registered,
// for clients that run in the same process.
func NewInProcessServer(version string) *server.MCPServer {
	return newMCPServer(version, tools.NewAPITools())
}

func (s *FlewidServer) addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

func (s *FlewidServer) startStreamableHTTP() error {
	s.mu.Lock()
	s.streamableServer = server.NewStreamableHTTPServer(s.server)
	streamable := s.streamableServer
	s.mu.Unlock()

	addr := s.addr()
	logging.Info("Server", "Starting MCP server (streamable-http) on http://%s/mcp", addr)

	go func() {
		if err := streamable.Start(addr); err != nil && err != http.ErrServerClosed {
			logging.Error("Server", err, "Streamable HTTP server error")
		}
	}()
	return nil
}

func (s *FlewidServer) startSSE() error {
	baseURL := fmt.Sprintf("http://%s:%d", s.config.Host, s.config.Port)

	s.mu.Lock()
	s.sseServer = server.NewSSEServer(
		s.server,
		server.WithBaseURL(baseURL),
		server.WithSSEEndpoint("/sse"),
		server.WithMessageEndpoint("/message"),
		server.WithKeepAlive(true),
		server.WithKeepAliveInterval(30*time.Second),
	)
	sseServer := s.sseServer
	s.mu.Unlock()

	addr := s.addr()
	logging.Info("Server", "Starting MCP server (sse) on %s/sse", baseURL)

	go func() {
		if err := sseServer.Start(addr); err != nil && err != http.ErrServerClosed {
			logging.Error("Server", err, "SSE server error")
		}
	}()
	return nil
}

func (s *FlewidServer) startStdio() error {
	stdio := server.NewStdioServer(s.server)
	logging.Info("Server", "Serving MCP over stdio")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := stdio.Listen(s.ctx, s.config.Stdin, s.config.Stdout); err != nil && s.ctx.Err() == nil {
			logging.Error("Server", err, "Stdio server error")
		}
	}()
	return nil
}

// Stop shuts the transport down and waits for background routines.
func (s *FlewidServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.server == nil {
		s.mu.Unlock()
		return fmt.Errorf("server not started")
	}

	logging.Info("Server", "Stopping MCP server")

	cancelFunc := s.cancelFunc
	sseServer := s.sseServer
	streamable := s.streamableServer
	s.mu.Unlock()

	if cancelFunc != nil {
		cancelFunc()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if sseServer != nil {
		if err := sseServer.Shutdown(shutdownCtx); err != nil {
			logging.Error("Server", err, "Error shutting down SSE server")
		}
	}
	if streamable != nil {
		if err := streamable.Shutdown(shutdownCtx); err != nil {
			logging.Error("Server", err, "Error shutting down streamable HTTP server")
		}
	}

	s.wg.Wait()

	s.mu.Lock()
	s.server = nil
	s.sseServer = nil
	s.streamableServer = nil
	s.resources = make(map[string]struct{})
	s.mu.Unlock()

	return nil
}

// MCPServer returns the underlying MCP server, or nil before Start.
func (s *FlewidServer) MCPServer() *server.MCPServer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.server
}

// monitorCatalogChanges republishes template resources when the catalog changes
func (s *FlewidServer) monitorCatalogChanges() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.changes:
			logging.Debug("Server", "Template catalog changed, updating resources")
			s.syncTemplateResources()
		}
	}
}

// syncTemplateResources publishes one resource per catalog template and
// removes resources whose template is gone.
func (s *FlewidServer) syncTemplateResources() {
	handler := api.GetTemplate()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil || handler == nil {
		return
	}

	current := make(map[string]struct{})
	for _, tmpl := range handler.ListTemplates() {
		uri := templateURIPrefix + tmpl.ID
		current[uri] = struct{}{}
		if _, published := s.resources[uri]; published {
			continue
		}
		s.server.AddResource(
			mcp.NewResource(uri, tmpl.Name,
				mcp.WithResourceDescription(tmpl.Description),
				mcp.WithMIMEType("application/json"),
			),
			templateResourceHandler(tmpl.ID),
		)
	}

	// Note: resources are removed one at a time, which sends one
	// notification per removal.
	for uri := range s.resources {
		if _, ok := current[uri]; !ok {
			s.server.RemoveResource(uri)
		}
	}

	s.resources = current
	logging.Debug("Server", "Publishing %d template resources", len(current))
}

// templateResourceHandler reads the current version of a template.
func templateResourceHandler(id string) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		handler := api.GetTemplate()
		if handler == nil {
			return nil, api.ErrTemplateNotRegistered
		}
		tmpl, err := handler.GetTemplate(id)
		if err != nil {
			return nil, err
		}
		data, err := json.MarshalIndent(tmpl, "", "  ")
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
