package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// Helper function to create a temporary config file
func createTempConfigFile(t *testing.T, dir string, filename string, content FlewidConfig) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	tempFilePath := filepath.Join(dir, filename)
	data, err := yaml.Marshal(&content)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(tempFilePath, data, 0644))
	return tempFilePath
}

// mockPaths points the user and project config lookups at tempDir.
func mockPaths(t *testing.T, tempDir string) {
	t.Helper()
	originalHome := osUserHomeDir
	originalGetwd := osGetwd
	originalUser := getUserConfigPath
	originalProject := getProjectConfigPath
	t.Cleanup(func() {
		osUserHomeDir = originalHome
		osGetwd = originalGetwd
		getUserConfigPath = originalUser
		getProjectConfigPath = originalProject
	})

	osUserHomeDir = func() (string, error) { return filepath.Join(tempDir, "home"), nil }
	osGetwd = func() (string, error) { return filepath.Join(tempDir, "work"), nil }
	getUserConfigPath = func() (string, error) {
		return filepath.Join(tempDir, "home", userConfigDir, configFileName), nil
	}
	getProjectConfigPath = func() (string, error) {
		return filepath.Join(tempDir, "work", projectConfigDir, configFileName), nil
	}
}

func TestLoadConfig_DefaultOnly(t *testing.T) {
	mockPaths(t, t.TempDir())

	loadedConfig, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), loadedConfig)
	assert.True(t, loadedConfig.Templates.BuiltinTemplatesEnabled())
}

func TestLoadConfig_UserOverride(t *testing.T) {
	tempDir := t.TempDir()
	mockPaths(t, tempDir)

	createTempConfigFile(t, filepath.Join(tempDir, "home", userConfigDir), configFileName, FlewidConfig{
		GlobalSettings: GlobalSettings{LogLevel: "debug"},
		Transform:      TransformConfig{Timeout: 2 * time.Second},
	})

	loadedConfig, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", loadedConfig.GlobalSettings.LogLevel)
	assert.Equal(t, "text", loadedConfig.GlobalSettings.LogFormat, "unset fields keep defaults")
	assert.Equal(t, 2*time.Second, loadedConfig.Transform.Timeout)
	assert.Equal(t, 64*1024, loadedConfig.Transform.MaxSnippetBytes)
	assert.Equal(t, 1000, loadedConfig.Transform.MaxCallDepth)
}

func TestLoadConfig_ProjectOverridesUser(t *testing.T) {
	tempDir := t.TempDir()
	mockPaths(t, tempDir)

	disabled := false
	createTempConfigFile(t, filepath.Join(tempDir, "home", userConfigDir), configFileName, FlewidConfig{
		Server: ServerConfig{Port: 9000, Host: "0.0.0.0"},
	})
	createTempConfigFile(t, filepath.Join(tempDir, "work", projectConfigDir), configFileName, FlewidConfig{
		Server:    ServerConfig{Port: 9100, Transport: MCPTransportSSE},
		Templates: TemplatesConfig{IncludeBuiltin: &disabled},
	})

	loadedConfig, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 9100, loadedConfig.Server.Port)
	assert.Equal(t, "0.0.0.0", loadedConfig.Server.Host)
	assert.Equal(t, MCPTransportSSE, loadedConfig.Server.Transport)
	assert.False(t, loadedConfig.Templates.BuiltinTemplatesEnabled())
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	tempDir := t.TempDir()
	mockPaths(t, tempDir)

	dir := filepath.Join(tempDir, "work", projectConfigDir)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("server: [unclosed"), 0644))

	_, err := LoadConfig()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "project config")
}

func TestLoadConfig_DurationFromString(t *testing.T) {
	tempDir := t.TempDir()
	mockPaths(t, tempDir)

	dir := filepath.Join(tempDir, "home", userConfigDir)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("transform:\n  timeout: 250ms\n"), 0644))

	loadedConfig, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, loadedConfig.Transform.Timeout)
}

func TestLoadConfigFromPath(t *testing.T) {
	dir := t.TempDir()
	createTempConfigFile(t, dir, configFileName, FlewidConfig{
		GlobalSettings: GlobalSettings{LogFormat: "json"},
	})

	loadedConfig, err := LoadConfigFromPath(dir)
	require.NoError(t, err)
	assert.Equal(t, "json", loadedConfig.GlobalSettings.LogFormat)
	assert.Equal(t, "info", loadedConfig.GlobalSettings.LogLevel)

	_, err = LoadConfigFromPath(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestGetConfigurationPaths(t *testing.T) {
	tempDir := t.TempDir()
	mockPaths(t, tempDir)

	userDir, projectDir, err := GetConfigurationPaths()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tempDir, "home", userConfigDir), userDir)
	assert.Equal(t, filepath.Join(tempDir, "work", projectConfigDir), projectDir)

	osUserHomeDir = func() (string, error) { return "", errors.New("no home") }
	_, _, err = GetConfigurationPaths()
	assert.Error(t, err)
}

type sampleDefinition struct {
	Name  string `yaml:"name"`
	Value int    `yaml:"value"`
}

func TestLoadAndParseYAML(t *testing.T) {
	tempDir := t.TempDir()
	mockPaths(t, tempDir)

	userSub := filepath.Join(tempDir, "home", userConfigDir, "samples")
	projectSub := filepath.Join(tempDir, "work", projectConfigDir, "samples")
	require.NoError(t, os.MkdirAll(userSub, 0755))
	require.NoError(t, os.MkdirAll(projectSub, 0755))

	require.NoError(t, os.WriteFile(filepath.Join(userSub, "b.yaml"), []byte("name: b\nvalue: 2\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(userSub, "a.yml"), []byte("name: a\nvalue: 1\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(userSub, "notes.txt"), []byte("ignored"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(projectSub, "broken.yaml"), []byte("name: [x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(projectSub, "c.yaml"), []byte("name: c\nvalue: -1\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(projectSub, "d.yaml"), []byte("name: d\nvalue: 4\n"), 0644))

	validator := func(d sampleDefinition) error {
		if d.Value < 0 {
			return errors.New("value must not be negative")
		}
		return nil
	}

	defs, errs, err := LoadAndParseYAML[sampleDefinition]("samples", validator)
	require.NoError(t, err)

	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"a", "b", "d"}, names, "user layer first, lexical order within a layer")

	require.True(t, errs.HasErrors())
	assert.Len(t, errs.Errors, 2)
	for _, e := range errs.Errors {
		assert.Equal(t, "project", e.Source)
	}
	assert.Contains(t, errs.Error(), "2 configuration file(s)")
}

func TestLoadAndParseYAML_MissingDirectories(t *testing.T) {
	mockPaths(t, t.TempDir())

	defs, errs, err := LoadAndParseYAML[sampleDefinition]("samples", nil)
	require.NoError(t, err)
	assert.Empty(t, defs)
	assert.False(t, errs.HasErrors())
}

func TestLoadAndParseYAMLWithConfig(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "samples")
	require.NoError(t, os.MkdirAll(sub, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "x.yaml"), []byte("name: x\nvalue: 9\n"), 0644))

	defs, errs, err := LoadAndParseYAMLWithConfig[sampleDefinition](dir, "samples", nil)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "x", defs[0].Name)
	assert.False(t, errs.HasErrors())
}
