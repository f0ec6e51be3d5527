package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"flewid/pkg/logging"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/flewid"
	projectConfigDir = ".flewid"
	configFileName   = "config.yaml"
)

// LoadConfig loads the flewid configuration by layering default, user, and project settings.
func LoadConfig() (FlewidConfig, error) {
	config := GetDefaultConfig()

	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// User config is optional
		logging.Warn("Config", "Could not determine user config path: %v", err)
	} else if _, statErr := os.Stat(userConfigPath); statErr == nil {
		userConfig, err := loadConfigFromFile(userConfigPath)
		if err != nil {
			return FlewidConfig{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
		}
		config = mergeConfigs(config, userConfig)
	}

	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		logging.Warn("Config", "Could not determine project config path: %v", err)
	} else if _, statErr := os.Stat(projectConfigPath); statErr == nil {
		projectConfig, err := loadConfigFromFile(projectConfigPath)
		if err != nil {
			return FlewidConfig{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
		}
		config = mergeConfigs(config, projectConfig)
	}

	return config, nil
}

// LoadConfigFromPath loads configuration from a single directory, skipping
// the user and project layers. The directory must contain config.yaml.
func LoadConfigFromPath(configPath string) (FlewidConfig, error) {
	path := filepath.Join(configPath, configFileName)
	fileConfig, err := loadConfigFromFile(path)
	if err != nil {
		return FlewidConfig{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	return mergeConfigs(GetDefaultConfig(), fileConfig), nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// loadConfigFromFile loads a FlewidConfig from a YAML file.
func loadConfigFromFile(filePath string) (FlewidConfig, error) {
	var config FlewidConfig
	data, err := os.ReadFile(filePath)
	if err != nil {
		return FlewidConfig{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return FlewidConfig{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' config into 'base' config. Zero values in
// the overlay leave the base untouched.
func mergeConfigs(base, overlay FlewidConfig) FlewidConfig {
	merged := base

	if overlay.GlobalSettings.LogLevel != "" {
		merged.GlobalSettings.LogLevel = overlay.GlobalSettings.LogLevel
	}
	if overlay.GlobalSettings.LogFormat != "" {
		merged.GlobalSettings.LogFormat = overlay.GlobalSettings.LogFormat
	}

	if overlay.Transform.Timeout > 0 {
		merged.Transform.Timeout = overlay.Transform.Timeout
	}
	if overlay.Transform.MaxSnippetBytes > 0 {
		merged.Transform.MaxSnippetBytes = overlay.Transform.MaxSnippetBytes
	}
	if overlay.Transform.MaxCallDepth > 0 {
		merged.Transform.MaxCallDepth = overlay.Transform.MaxCallDepth
	}

	if overlay.Templates.IncludeBuiltin != nil {
		v := *overlay.Templates.IncludeBuiltin
		merged.Templates.IncludeBuiltin = &v
	}
	if overlay.Templates.Directory != "" {
		merged.Templates.Directory = overlay.Templates.Directory
	}

	if overlay.Server.Port != 0 {
		merged.Server.Port = overlay.Server.Port
	}
	if overlay.Server.Host != "" {
		merged.Server.Host = overlay.Server.Host
	}
	if overlay.Server.Transport != "" {
		merged.Server.Transport = overlay.Server.Transport
	}

	return merged
}

// GetUserConfigDir returns the user configuration directory path
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// GetConfigurationPaths returns the user and project configuration directories.
func GetConfigurationPaths() (userDir, projectDir string, err error) {
	userDir, err = GetUserConfigDir()
	if err != nil {
		return "", "", fmt.Errorf("failed to determine user config dir: %w", err)
	}
	wd, err := osGetwd()
	if err != nil {
		return "", "", fmt.Errorf("failed to determine working directory: %w", err)
	}
	return userDir, filepath.Join(wd, projectConfigDir), nil
}
