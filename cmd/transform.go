package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	transformMode      string
	transformSnippet   string
	transformFile      string
	transformInput     string
	transformInputFile string
	transformInputText bool
	transformField     string
	transformVars      []string
)

// transformCmd groups the transform commands
var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Run transform snippets against step output",
	Long: `Run transform snippets the way a workflow transform step does.

Modes:
  procedural          JavaScript function body; the input is bound to 'data'
                      and helpers are available under 'utils'
  path-query          JSONPath expression such as $.items[*].id
  pattern-extraction  Regular expression applied to a text field

Available commands:
  run        - Run a snippet
  utilities  - List the helpers available to procedural snippets`,
}

// transformRunCmd runs a snippet
var transformRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a transform snippet",
	Long: `Run a transform snippet against JSON input.

The snippet comes from --snippet or --file and the input from --input or
--input-file ('-' reads stdin). Inline input that is not valid JSON, or any
inline input when --input-text is set, is passed as a string. Values passed with --var are substituted
into {{...}} references in the snippet before it runs.

Examples:
  flewid transform run --mode path-query --snippet '$.Items[*].id' --input-file items.json
  flewid transform run --mode procedural --snippet 'return utils.sum(data)' --input '[1,2,3]'
  flewid transform run --mode pattern-extraction --field message --snippet 'req=(\w+)' --input-file logs.json`,
	Args: cobra.NoArgs,
	RunE: runTransform,
}

// transformUtilitiesCmd lists snippet helpers
var transformUtilitiesCmd = &cobra.Command{
	Use:   "utilities",
	Short: "List the helpers available to procedural snippets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, "transform_utilities", nil)
	},
}

func init() {
	rootCmd.AddCommand(transformCmd)
	transformCmd.AddCommand(transformRunCmd)
	transformCmd.AddCommand(transformUtilitiesCmd)

	transformRunCmd.Flags().StringVarP(&transformMode, "mode", "m", "procedural", "Transform mode (procedural, path-query, pattern-extraction)")
	transformRunCmd.Flags().StringVarP(&transformSnippet, "snippet", "s", "", "Snippet text")
	transformRunCmd.Flags().StringVarP(&transformFile, "file", "f", "", "Read the snippet from a file")
	transformRunCmd.Flags().StringVarP(&transformInput, "input", "i", "", "Input data as JSON")
	transformRunCmd.Flags().BoolVar(&transformInputText, "input-text", false, "Pass --input as text without decoding it")
	transformRunCmd.Flags().StringVar(&transformInputFile, "input-file", "", "Read input data from a JSON or YAML file ('-' for stdin)")
	transformRunCmd.Flags().StringVar(&transformField, "field", "", "Field holding the text for pattern extraction")
	transformRunCmd.Flags().StringArrayVar(&transformVars, "var", nil, "Variable as name=value (repeatable)")
}

func runTransform(cmd *cobra.Command, args []string) error {
	toolArgs, err := transformArguments()
	if err != nil {
		return err
	}
	return runTool(cmd, "transform_execute", toolArgs)
}

// transformArguments builds the transform_execute arguments from flags
func transformArguments() (map[string]interface{}, error) {
	snippet := transformSnippet
	if transformFile != "" {
		if snippet != "" {
			return nil, fmt.Errorf("--snippet and --file are mutually exclusive")
		}
		content, err := readInput(transformFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read snippet file: %w", err)
		}
		snippet = string(content)
	}
	if snippet == "" {
		return nil, fmt.Errorf("a snippet is required (use --snippet or --file)")
	}

	toolArgs := map[string]interface{}{
		"mode":    transformMode,
		"snippet": snippet,
	}

	switch {
	case transformInput != "" && transformInputFile != "":
		return nil, fmt.Errorf("--input and --input-file are mutually exclusive")
	case transformInputFile != "":
		doc, err := readDocument(transformInputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}
		toolArgs["input"] = doc
	case transformInput != "":
		toolArgs["input"] = inlineInput(transformInput, transformInputText)
	}

	if transformField != "" {
		toolArgs["field"] = transformField
	}

	if len(transformVars) > 0 {
		vars, err := parseVars(transformVars)
		if err != nil {
			return nil, err
		}
		toolArgs["variables"] = vars
	}

	return toolArgs, nil
}

// inlineInput decodes --input as JSON unless asText is set. Text that does
// not parse is kept as a string.
func inlineInput(raw string, asText bool) interface{} {
	if asText {
		return raw
	}
	var decoded interface{}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return raw
	}
	return decoded
}
