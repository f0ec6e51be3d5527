package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"flewid/internal/app"
	"flewid/internal/cli"
	"flewid/internal/value"
)

// newToolExecutor connects an executor for a command. Without --endpoint the
// application is bootstrapped so tools run against an in-process server.
func newToolExecutor(cmd *cobra.Command) (*cli.ToolExecutor, error) {
	options := cli.ExecutorOptions{
		Format:   cli.OutputFormat(outputFormat),
		Quiet:    quiet,
		Endpoint: endpoint,
		Version:  rootCmd.Version,
		Out:      cmd.OutOrStdout(),
		ErrOut:   cmd.ErrOrStderr(),
	}

	if endpoint == "" {
		level := logLevel
		if level == "" {
			level = "warn"
		}
		if _, err := app.NewApplication(app.NewConfig(configPath, level, rootCmd.Version)); err != nil {
			return nil, fmt.Errorf("failed to initialize application: %w", err)
		}
	}

	executor, err := cli.NewToolExecutor(options)
	if err != nil {
		return nil, err
	}
	if err := executor.Connect(cmd.Context()); err != nil {
		executor.Close()
		return nil, err
	}
	return executor, nil
}

// runTool executes one tool call and prints the formatted result
func runTool(cmd *cobra.Command, toolName string, args map[string]interface{}) error {
	executor, err := newToolExecutor(cmd)
	if err != nil {
		return err
	}
	defer executor.Close()

	return executor.Execute(cmd.Context(), toolName, args)
}

// readInput reads a file, or stdin when filename is "-"
func readInput(filename string) ([]byte, error) {
	var reader io.Reader

	if filename == "-" {
		reader = os.Stdin
	} else {
		file, err := os.Open(filename)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		reader = file
	}

	return io.ReadAll(reader)
}

// readDocument reads a YAML or JSON document into JSON-compatible values
func readDocument(filename string) (interface{}, error) {
	content, err := readInput(filename)
	if err != nil {
		return nil, err
	}

	var doc interface{}
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	return value.Normalize(doc)
}

// readObject reads a document that must be a mapping
func readObject(filename string) (map[string]interface{}, error) {
	doc, err := readDocument(filename)
	if err != nil {
		return nil, err
	}
	obj, ok := doc.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s must contain a mapping", filename)
	}
	return obj, nil
}

// parseVars turns name=value pairs into a map. Values that parse as JSON keep
// their type, so count=3 is a number and flags=true a boolean.
func parseVars(pairs []string) (map[string]interface{}, error) {
	vars := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid variable %q (expected name=value)", pair)
		}

		var decoded interface{}
		if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
			vars[name] = decoded
		} else {
			vars[name] = raw
		}
	}
	return vars, nil
}

// mergeVars overlays flag values on values read from a file
func mergeVars(fromFile string, pairs []string) (map[string]interface{}, error) {
	vars := make(map[string]interface{})
	if fromFile != "" {
		obj, err := readObject(fromFile)
		if err != nil {
			return nil, err
		}
		for k, v := range obj {
			vars[k] = v
		}
	}

	flagVars, err := parseVars(pairs)
	if err != nil {
		return nil, err
	}
	for k, v := range flagVars {
		vars[k] = v
	}
	return vars, nil
}
