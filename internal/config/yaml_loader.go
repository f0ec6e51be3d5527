package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"flewid/pkg/logging"
)

// ConfigurationError describes one file that could not be loaded.
type ConfigurationError struct {
	File    string
	Source  string // user, project or custom
	Message string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.File, e.Source, e.Message)
}

// ConfigurationErrorCollection gathers per-file errors so one bad file does
// not prevent the others from loading.
type ConfigurationErrorCollection struct {
	Errors []ConfigurationError
}

// Add records an error.
func (c *ConfigurationErrorCollection) Add(file, source, message string) {
	c.Errors = append(c.Errors, ConfigurationError{File: file, Source: source, Message: message})
}

// HasErrors reports whether anything was recorded.
func (c *ConfigurationErrorCollection) HasErrors() bool {
	return c != nil && len(c.Errors) > 0
}

func (c *ConfigurationErrorCollection) Error() string {
	if !c.HasErrors() {
		return "no configuration errors"
	}
	msgs := make([]string, 0, len(c.Errors))
	for _, e := range c.Errors {
		msgs = append(msgs, e.Error())
	}
	return fmt.Sprintf("%d configuration file(s) failed to load: %s", len(c.Errors), strings.Join(msgs, "; "))
}

// LoadAndParseYAML loads every YAML file in <userDir>/<subDir> and then
// <projectDir>/<subDir>, in lexical order. Files that fail to parse or
// validate are skipped and reported in the collection.
func LoadAndParseYAML[T any](subDir string, validator func(T) error) ([]T, *ConfigurationErrorCollection, error) {
	userDir, projectDir, err := GetConfigurationPaths()
	if err != nil {
		return nil, nil, err
	}
	return loadLayers[T]([]layer{
		{dir: filepath.Join(userDir, subDir), source: "user"},
		{dir: filepath.Join(projectDir, subDir), source: "project"},
	}, validator)
}

// LoadAndParseYAMLWithConfig is LoadAndParseYAML restricted to a single
// custom configuration directory. An empty configPath falls back to the
// layered lookup.
func LoadAndParseYAMLWithConfig[T any](configPath, subDir string, validator func(T) error) ([]T, *ConfigurationErrorCollection, error) {
	if configPath == "" {
		return LoadAndParseYAML[T](subDir, validator)
	}
	return loadLayers[T]([]layer{{dir: filepath.Join(configPath, subDir), source: "custom"}}, validator)
}

type layer struct {
	dir    string
	source string
}

func loadLayers[T any](layers []layer, validator func(T) error) ([]T, *ConfigurationErrorCollection, error) {
	var results []T
	errs := &ConfigurationErrorCollection{}

	for _, l := range layers {
		files, err := yamlFiles(l.dir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s config directory %s: %w", l.source, l.dir, err)
		}
		for _, file := range files {
			item, err := parseYAMLFile[T](file)
			if err != nil {
				errs.Add(file, l.source, err.Error())
				logging.Warn("ConfigLoader", "Skipping %s: %v", file, err)
				continue
			}
			if validator != nil {
				if err := validator(item); err != nil {
					errs.Add(file, l.source, fmt.Sprintf("validation failed: %v", err))
					logging.Warn("ConfigLoader", "Skipping invalid %s: %v", file, err)
					continue
				}
			}
			results = append(results, item)
		}
	}
	return results, errs, nil
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func parseYAMLFile[T any](file string) (T, error) {
	var item T
	data, err := os.ReadFile(file)
	if err != nil {
		return item, err
	}
	if err := yaml.Unmarshal(data, &item); err != nil {
		return item, fmt.Errorf("invalid YAML: %w", err)
	}
	return item, nil
}
