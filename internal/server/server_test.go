package server

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flewid/internal/api"
	"flewid/internal/config"
	"flewid/internal/filter"
	"flewid/internal/templates"
	"flewid/internal/transform"
	"flewid/internal/variables"
)

func setupHandlers(t *testing.T) *templates.TemplateStorage {
	t.Helper()
	transform.NewAPIAdapter(transform.NewExecutor(transform.Config{})).Register()
	filter.NewAPIAdapter().Register()
	variables.NewAPIAdapter(nil).Register()

	dir := t.TempDir()
	storage, err := templates.NewTemplateStorage(templates.Options{ConfigDir: dir, ConfigPath: dir, IncludeBuiltin: true})
	require.NoError(t, err)
	templates.NewAPIAdapter(storage, nil).Register()

	t.Cleanup(func() {
		api.RegisterTransform(nil)
		api.RegisterFilter(nil)
		api.RegisterVariables(nil)
		api.RegisterTemplate(nil)
	})
	return storage
}

// startStdioServer starts a server on an idle stdio pipe and connects an
// in-process client to it.
func startStdioServer(t *testing.T, storage *templates.TemplateStorage) (*FlewidServer, *client.Client) {
	t.Helper()

	stdinReader, stdinWriter := io.Pipe()
	srv := NewFlewidServer(Config{
		Transport: config.MCPTransportStdio,
		Version:   "test",
		Stdin:     stdinReader,
		Stdout:    io.Discard,
	}, storage.GetChangeChannel())

	ctx := context.Background()
	require.NoError(t, srv.Start(ctx))
	t.Cleanup(func() {
		srv.Stop(context.Background())
		stdinWriter.Close()
	})

	c, err := client.NewInProcessClient(srv.MCPServer())
	require.NoError(t, err)
	require.NoError(t, c.Start(ctx))
	t.Cleanup(func() { c.Close() })

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "server-test", Version: "test"}
	_, err = c.Initialize(ctx, initReq)
	require.NoError(t, err)

	return srv, c
}

func listURIs(c *client.Client) ([]string, error) {
	result, err := c.ListResources(context.Background(), mcp.ListResourcesRequest{})
	if err != nil {
		return nil, err
	}

	var uris []string
	for _, r := range result.Resources {
		uris = append(uris, r.URI)
	}
	return uris, nil
}

func hasResource(c *client.Client, uri string) bool {
	uris, err := listURIs(c)
	if err != nil {
		return false
	}
	for _, u := range uris {
		if u == uri {
			return true
		}
	}
	return false
}

func TestNewFlewidServer_Defaults(t *testing.T) {
	srv := NewFlewidServer(Config{}, nil)

	assert.Equal(t, "localhost", srv.config.Host)
	assert.Equal(t, 8090, srv.config.Port)
	assert.Equal(t, config.MCPTransportStreamableHTTP, srv.config.Transport)
	assert.Equal(t, "dev", srv.config.Version)
	assert.Equal(t, "localhost:8090", srv.addr())
	assert.Nil(t, srv.MCPServer())
}

func TestFlewidServer_UnsupportedTransport(t *testing.T) {
	srv := NewFlewidServer(Config{Transport: "carrier-pigeon"}, nil)

	err := srv.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported transport")
}

func TestFlewidServer_StopBeforeStart(t *testing.T) {
	srv := NewFlewidServer(Config{}, nil)
	assert.EqualError(t, srv.Stop(context.Background()), "server not started")
}

func TestFlewidServer_StartTwice(t *testing.T) {
	storage := setupHandlers(t)
	srv, _ := startStdioServer(t, storage)

	assert.EqualError(t, srv.Start(context.Background()), "server already started")
}

func TestFlewidServer_Tools(t *testing.T) {
	storage := setupHandlers(t)
	_, c := startStdioServer(t, storage)

	result, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, tool := range result.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"transform_execute", "filter_compile", "variables_resolve", "template_instantiate"} {
		assert.True(t, names[want], "missing tool %s", want)
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = "filter_compile"
	req.Params.Arguments = map[string]interface{}{"expression": "Status=ACTIVE"}
	callResult, err := c.CallTool(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, callResult.IsError)
}

func TestFlewidServer_TemplateResources(t *testing.T) {
	storage := setupHandlers(t)
	_, c := startStdioServer(t, storage)

	uris, err := listURIs(c)
	require.NoError(t, err)
	assert.Contains(t, uris, "flewid://templates/dynamodb-filtered-scan")
	assert.Len(t, uris, len(storage.ListTemplates()))

	readReq := mcp.ReadResourceRequest{}
	readReq.Params.URI = "flewid://templates/dynamodb-filtered-scan"
	result, err := c.ReadResource(context.Background(), readReq)
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)

	var text string
	switch contents := result.Contents[0].(type) {
	case mcp.TextResourceContents:
		text = contents.Text
	case *mcp.TextResourceContents:
		text = contents.Text
	}
	assert.True(t, strings.Contains(text, `"id": "dynamodb-filtered-scan"`), text)
}

func TestFlewidServer_ResourcesFollowCatalog(t *testing.T) {
	storage := setupHandlers(t)
	_, c := startStdioServer(t, storage)

	tmpl := api.Template{
		ID:    "authored",
		Name:  "Authored",
		Steps: []api.TemplateStep{{ID: "one", Type: "lambda"}},
	}
	require.NoError(t, storage.CreateTemplate(tmpl))

	assert.Eventually(t, func() bool {
		return hasResource(c, "flewid://templates/authored")
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, storage.DeleteTemplate("authored"))

	assert.Eventually(t, func() bool {
		return !hasResource(c, "flewid://templates/authored")
	}, 2*time.Second, 20*time.Millisecond)
}
