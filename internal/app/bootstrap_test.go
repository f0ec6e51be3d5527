package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flewid/internal/api"
	"flewid/internal/config"
)

const customTemplate = `id: nightly-export
name: Nightly export
category: storage
variables:
  - name: bucket
    type: string
    required: true
steps:
  - id: export
    type: s3
    config:
      bucket: "{{bucket}}"
`

func writeConfigDir(t *testing.T, configYAML string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configYAML), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "templates"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "templates", "nightly.yaml"), []byte(customTemplate), 0644))
	return dir
}

func unregisterHandlers(t *testing.T) {
	t.Cleanup(func() {
		api.RegisterTransform(nil)
		api.RegisterFilter(nil)
		api.RegisterVariables(nil)
		api.RegisterTemplate(nil)
	})
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/tmp/flewid", "debug", "1.0.0")

	assert.Equal(t, "/tmp/flewid", cfg.ConfigPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "1.0.0", cfg.Version)
	assert.Nil(t, cfg.FlewidConfig)
}

func TestServerConfigOverrides(t *testing.T) {
	defaults := config.GetDefaultConfig()

	tests := []struct {
		name string
		cfg  *Config
		want config.ServerConfig
	}{
		{
			name: "configured values",
			cfg:  &Config{FlewidConfig: &defaults},
			want: defaults.Server,
		},
		{
			name: "flags override",
			cfg:  &Config{FlewidConfig: &defaults, Transport: "sse", Host: "0.0.0.0", Port: 9000},
			want: config.ServerConfig{Transport: "sse", Host: "0.0.0.0", Port: 9000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.serverConfig())
		})
	}
}

func TestNewApplication(t *testing.T) {
	unregisterHandlers(t)
	dir := writeConfigDir(t, "transform:\n  timeout: 2s\ntemplates:\n  includeBuiltin: false\n")

	application, err := NewApplication(NewConfig(dir, "", "test"))
	require.NoError(t, err)

	cfg := application.Config().FlewidConfig
	require.NotNil(t, cfg)
	assert.Equal(t, 2*time.Second, cfg.Transform.Timeout)
	assert.Equal(t, 8090, cfg.Server.Port)

	services := application.Services()
	require.NotNil(t, services.Executor)
	require.NotNil(t, services.TemplateStorage)
	require.NotNil(t, services.Server)

	// Only the directory template is loaded when builtins are disabled
	list := services.TemplateStorage.ListTemplates()
	require.Len(t, list, 1)
	assert.Equal(t, "nightly-export", list[0].ID)

	assert.NotNil(t, api.GetTransform())
	assert.NotNil(t, api.GetFilter())
	assert.NotNil(t, api.GetVariables())
	require.NotNil(t, api.GetTemplate())

	result, err := api.GetTemplate().Instantiate("nightly-export", map[string]interface{}{"bucket": "logs"})
	require.NoError(t, err)
	assert.Equal(t, "logs", result.Steps[0].Config["bucket"])
}

func TestNewApplication_AuthoredTemplatesWrittenToConfigPath(t *testing.T) {
	unregisterHandlers(t)
	dir := writeConfigDir(t, "templates:\n  includeBuiltin: false\n")

	application, err := NewApplication(NewConfig(dir, "", "test"))
	require.NoError(t, err)

	tmpl := api.Template{
		ID:   "authored",
		Name: "Authored",
		Steps: []api.TemplateStep{
			{ID: "one", Type: "lambda"},
		},
	}
	require.NoError(t, application.Services().TemplateStorage.CreateTemplate(tmpl))
	assert.FileExists(t, filepath.Join(dir, "authored_templates.yaml"))
}

func TestNewApplication_MissingConfig(t *testing.T) {
	unregisterHandlers(t)

	_, err := NewApplication(NewConfig(t.TempDir(), "", "test"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load flewid configuration from path")
}

func TestApplication_ServeStdio(t *testing.T) {
	unregisterHandlers(t)
	dir := writeConfigDir(t, "server:\n  transport: stdio\n")

	stdinReader, stdinWriter := io.Pipe()
	t.Cleanup(func() { stdinWriter.Close() })

	cfg := NewConfig(dir, "error", "test")
	cfg.Stdin = stdinReader
	cfg.Stdout = io.Discard

	application, err := NewApplication(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Serve(ctx) }()

	require.Eventually(t, func() bool {
		return application.Services().Server.MCPServer() != nil
	}, 2*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}
	assert.Nil(t, application.Services().Server.MCPServer())
}
