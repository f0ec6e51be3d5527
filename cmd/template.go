package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	templateCategory   string
	templateVars       []string
	templateValuesFile string
)

// templateCmd represents the template command
var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage and instantiate workflow templates",
	Long: `Manage workflow templates in the flewid catalog.

The catalog holds built-in templates, templates found in the templates/
configuration directory, and templates authored through these commands.
Only authored templates can be updated or deleted.

Available commands:
  list         - List catalog templates
  get          - Show a template
  instantiate  - Produce concrete step configurations from a template
  create       - Create a template from a definition file
  update       - Replace an authored template
  delete       - Delete an authored template
  validate     - Validate a template definition`,
}

// templateListCmd lists catalog templates
var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var toolArgs map[string]interface{}
		if templateCategory != "" {
			toolArgs = map[string]interface{}{"category": templateCategory}
		}
		return runTool(cmd, "template_list", toolArgs)
	},
}

// templateGetCmd shows a single template
var templateGetCmd = &cobra.Command{
	Use:   "get <template-id>",
	Short: "Show a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, "template_get", map[string]interface{}{"id": args[0]})
	},
}

// templateInstantiateCmd instantiates a template
var templateInstantiateCmd = &cobra.Command{
	Use:   "instantiate <template-id>",
	Short: "Instantiate a template with variable values",
	Long: `Instantiate a template with variable values.

Values come from --values (a YAML or JSON mapping) and --var flags, with
flags taking precedence. Defaults fill any variable left unset. Every
value is validated before any step is produced.

Example:
  flewid template instantiate cloudwatch-error-investigation --var logGroup=/aws/lambda/orders --var hours=6`,
	Args: cobra.ExactArgs(1),
	RunE: runTemplateInstantiate,
}

// templateCreateCmd creates a template
var templateCreateCmd = &cobra.Command{
	Use:   "create <template-file>",
	Short: "Create a template from a definition file",
	Long: `Create a template from a YAML or JSON definition file.
Use '-' to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runTemplateCreate,
}

// templateUpdateCmd updates a template
var templateUpdateCmd = &cobra.Command{
	Use:   "update <template-id> <template-file>",
	Short: "Replace an authored template",
	Long: `Replace an authored template with a new definition from a YAML or
JSON file. The version is incremented. Use '-' to read from stdin.`,
	Args: cobra.ExactArgs(2),
	RunE: runTemplateUpdate,
}

// templateDeleteCmd deletes a template
var templateDeleteCmd = &cobra.Command{
	Use:   "delete <template-id>",
	Short: "Delete an authored template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, "template_delete", map[string]interface{}{"id": args[0]})
	},
}

// templateValidateCmd validates a definition
var templateValidateCmd = &cobra.Command{
	Use:   "validate <template-file>",
	Short: "Validate a template definition",
	Long: `Validate a template definition file without adding it to the catalog.
Use '-' to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runTemplateValidate,
}

func init() {
	rootCmd.AddCommand(templateCmd)

	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateGetCmd)
	templateCmd.AddCommand(templateInstantiateCmd)
	templateCmd.AddCommand(templateCreateCmd)
	templateCmd.AddCommand(templateUpdateCmd)
	templateCmd.AddCommand(templateDeleteCmd)
	templateCmd.AddCommand(templateValidateCmd)

	templateListCmd.Flags().StringVar(&templateCategory, "category", "", "Only list templates in this category")
	templateInstantiateCmd.Flags().StringArrayVar(&templateVars, "var", nil, "Variable as name=value (repeatable)")
	templateInstantiateCmd.Flags().StringVar(&templateValuesFile, "values", "", "YAML or JSON file with variable values")
}

func runTemplateInstantiate(cmd *cobra.Command, args []string) error {
	vars, err := mergeVars(templateValuesFile, templateVars)
	if err != nil {
		return err
	}

	return runTool(cmd, "template_instantiate", map[string]interface{}{
		"id":        args[0],
		"variables": vars,
	})
}

func runTemplateCreate(cmd *cobra.Command, args []string) error {
	definition, err := readObject(args[0])
	if err != nil {
		return fmt.Errorf("failed to read template file: %w", err)
	}

	return runTool(cmd, "template_create", map[string]interface{}{
		"template": definition,
	})
}

func runTemplateUpdate(cmd *cobra.Command, args []string) error {
	definition, err := readObject(args[1])
	if err != nil {
		return fmt.Errorf("failed to read template file: %w", err)
	}

	return runTool(cmd, "template_update", map[string]interface{}{
		"id":       args[0],
		"template": definition,
	})
}

func runTemplateValidate(cmd *cobra.Command, args []string) error {
	definition, err := readObject(args[0])
	if err != nil {
		return fmt.Errorf("failed to read template file: %w", err)
	}

	return runTool(cmd, "template_validate", map[string]interface{}{
		"template": definition,
	})
}
