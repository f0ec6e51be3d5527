package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"flewid/internal/server"
)

// CLIClient provides a simplified MCP client for CLI commands. Without an
// endpoint it talks to an in-process server, so commands work without a
// running flewid server.
type CLIClient struct {
	endpoint string
	version  string
	client   client.MCPClient
	timeout  time.Duration
}

// NewCLIClient creates a client backed by an in-process server
func NewCLIClient(version string) *CLIClient {
	return &CLIClient{
		version: version,
		timeout: 30 * time.Second,
	}
}

// NewCLIClientWithEndpoint creates a new CLI client with a specific endpoint
func NewCLIClientWithEndpoint(endpoint string) *CLIClient {
	return &CLIClient{
		endpoint: endpoint,
		timeout:  30 * time.Second,
	}
}

// InProcess reports whether the client runs against an in-process server.
func (c *CLIClient) InProcess() bool {
	return c.endpoint == ""
}

// Connect establishes the MCP session
func (c *CLIClient) Connect(ctx context.Context) error {
	var mcpClient *client.Client
	var err error
	if c.InProcess() {
		mcpClient, err = client.NewInProcessClient(server.NewInProcessServer(c.version))
		if err != nil {
			return fmt.Errorf("failed to create in-process client: %w", err)
		}
	} else {
		mcpClient, err = client.NewStreamableHttpClient(c.endpoint)
		if err != nil {
			return fmt.Errorf("failed to create streamable-http client: %w", err)
		}
	}
	c.client = mcpClient

	if err := mcpClient.Start(ctx); err != nil {
		c.client = nil
		return fmt.Errorf("failed to start client transport: %w", err)
	}

	// Initialize the session
	if err := c.initialize(ctx); err != nil {
		mcpClient.Close()
		c.client = nil
		return fmt.Errorf("initialization failed: %w", err)
	}

	return nil
}

// CallTool executes a tool and returns the result
func (c *CLIClient) CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	if c.client == nil {
		return nil, fmt.Errorf("client not connected")
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	// Create timeout context
	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.client.CallTool(timeoutCtx, req)
	if err != nil {
		return nil, fmt.Errorf("tool call failed: %w", err)
	}

	return result, nil
}

// CallToolSimple executes a tool and returns the text content as a string
func (c *CLIClient) CallToolSimple(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	result, err := c.CallTool(ctx, name, args)
	if err != nil {
		return "", err
	}

	text := resultText(result)
	if result.IsError {
		return "", fmt.Errorf("tool error: %s", describeFailure(text))
	}
	return text, nil
}

// CallToolJSON executes a tool and returns the result as parsed JSON
func (c *CLIClient) CallToolJSON(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	textResult, err := c.CallToolSimple(ctx, name, args)
	if err != nil {
		return nil, err
	}

	var jsonResult interface{}
	if err := json.Unmarshal([]byte(textResult), &jsonResult); err != nil {
		// If it's not JSON, return the text as-is
		return textResult, nil
	}

	return jsonResult, nil
}

// Close closes the connection
func (c *CLIClient) Close() error {
	if c.client != nil {
		c.client.Close()
		c.client = nil
	}
	return nil
}

// initialize performs the MCP protocol handshake
func (c *CLIClient) initialize(ctx context.Context) error {
	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{
		Name:    "flewid-cli",
		Version: c.version,
	}
	req.Params.Capabilities = mcp.ClientCapabilities{}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.client.Initialize(timeoutCtx, req)
	return err
}

// resultText joins the text contents of a tool result.
func resultText(result *mcp.CallToolResult) string {
	var out string
	for _, content := range result.Content {
		if textContent, ok := mcp.AsTextContent(content); ok {
			if out != "" {
				out += "\n"
			}
			out += textContent.Text
		}
	}
	return out
}
