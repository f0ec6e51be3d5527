package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	variablesVars        []string
	variablesStoreFile   string
	variablesDeclared    []string
	variablesValuesFile  string
	variablesDefinitions string
)

// variablesCmd groups the variable commands
var variablesCmd = &cobra.Command{
	Use:   "variables",
	Short: "Resolve and check {{...}} variable references",
	Long: `Work with {{scope.path[index]}} references in step configurations.

Available commands:
  resolve     - Substitute references in a configuration tree
  references  - List the references a configuration tree uses
  check       - Report references that use undeclared names
  validate    - Validate values against variable definitions

Configuration trees are read from YAML or JSON files ('-' for stdin).`,
}

// variablesResolveCmd substitutes references
var variablesResolveCmd = &cobra.Command{
	Use:   "resolve <tree-file>",
	Short: "Substitute references in a configuration tree",
	Long: `Substitute references in a configuration tree.

The store is read from --store (a mapping from scope name to value) and
--var flags. Unresolvable references are kept verbatim and reported.

Example:
  flewid variables resolve step.yaml --var region=eu-west-1 --store outputs.json`,
	Args: cobra.ExactArgs(1),
	RunE: runVariablesResolve,
}

// variablesReferencesCmd lists references
var variablesReferencesCmd = &cobra.Command{
	Use:   "references <tree-file>",
	Short: "List the references used by a configuration tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := readDocument(args[0])
		if err != nil {
			return fmt.Errorf("failed to read tree file: %w", err)
		}
		return runTool(cmd, "variables_references", map[string]interface{}{"tree": tree})
	},
}

// variablesCheckCmd checks references against declared names
var variablesCheckCmd = &cobra.Command{
	Use:   "check <tree-file>",
	Short: "Report references to undeclared names",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := readDocument(args[0])
		if err != nil {
			return fmt.Errorf("failed to read tree file: %w", err)
		}
		return runTool(cmd, "variables_check", map[string]interface{}{
			"tree":     tree,
			"declared": strings.Join(variablesDeclared, ","),
		})
	},
}

// variablesValidateCmd validates values against definitions
var variablesValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate values against variable definitions",
	Long: `Validate variable values against their definitions. Every violation is
reported, not only the first.

Example:
  flewid variables validate --definitions vars.yaml --values values.yaml --var limit=50`,
	Args: cobra.NoArgs,
	RunE: runVariablesValidate,
}

func init() {
	rootCmd.AddCommand(variablesCmd)

	variablesCmd.AddCommand(variablesResolveCmd)
	variablesCmd.AddCommand(variablesReferencesCmd)
	variablesCmd.AddCommand(variablesCheckCmd)
	variablesCmd.AddCommand(variablesValidateCmd)

	variablesResolveCmd.Flags().StringArrayVar(&variablesVars, "var", nil, "Store entry as name=value (repeatable)")
	variablesResolveCmd.Flags().StringVar(&variablesStoreFile, "store", "", "YAML or JSON file with the variable store")

	variablesCheckCmd.Flags().StringSliceVar(&variablesDeclared, "declared", nil, "Declared names (comma-separated or repeated)")

	variablesValidateCmd.Flags().StringArrayVar(&variablesVars, "var", nil, "Value as name=value (repeatable)")
	variablesValidateCmd.Flags().StringVar(&variablesValuesFile, "values", "", "YAML or JSON file with variable values")
	variablesValidateCmd.Flags().StringVar(&variablesDefinitions, "definitions", "", "YAML or JSON file with a list of variable definitions")
	_ = variablesValidateCmd.MarkFlagRequired("definitions")
}

func runVariablesResolve(cmd *cobra.Command, args []string) error {
	tree, err := readDocument(args[0])
	if err != nil {
		return fmt.Errorf("failed to read tree file: %w", err)
	}
	store, err := mergeVars(variablesStoreFile, variablesVars)
	if err != nil {
		return err
	}

	return runTool(cmd, "variables_resolve", map[string]interface{}{
		"tree":  tree,
		"store": store,
	})
}

func runVariablesValidate(cmd *cobra.Command, args []string) error {
	definitions, err := readDocument(variablesDefinitions)
	if err != nil {
		return fmt.Errorf("failed to read definitions file: %w", err)
	}
	if _, ok := definitions.([]interface{}); !ok {
		return fmt.Errorf("%s must contain a list of variable definitions", variablesDefinitions)
	}
	values, err := mergeVars(variablesValuesFile, variablesVars)
	if err != nil {
		return err
	}

	return runTool(cmd, "variables_validate", map[string]interface{}{
		"values":      values,
		"definitions": definitions,
	})
}
