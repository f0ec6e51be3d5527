package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

var filterCopy bool

// filterCmd groups the filter commands
var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Compile filter expressions for key-value store queries",
}

// filterCompileCmd compiles one expression
var filterCompileCmd = &cobra.Command{
	Use:   "compile <expression>",
	Short: "Compile a filter expression",
	Long: `Compile a filter expression into a predicate with placeholder maps.

Supported forms:
  Status=ACTIVE
  Age>21
  attribute_exists(Email)
  contains(Name, "smith")
  begins_with(Sku, "AB-")

Use --copy to place the compiled expression on the clipboard.`,
	Args: cobra.ExactArgs(1),
	RunE: runFilterCompile,
}

func init() {
	rootCmd.AddCommand(filterCmd)
	filterCmd.AddCommand(filterCompileCmd)

	filterCompileCmd.Flags().BoolVar(&filterCopy, "copy", false, "Copy the compiled expression to the clipboard")
}

func runFilterCompile(cmd *cobra.Command, args []string) error {
	executor, err := newToolExecutor(cmd)
	if err != nil {
		return err
	}
	defer executor.Close()

	ctx := cmd.Context()
	toolArgs := map[string]interface{}{
		"expression": args[0],
	}

	if err := executor.Execute(ctx, "filter_compile", toolArgs); err != nil {
		return err
	}
	if !filterCopy {
		return nil
	}

	result, err := executor.ExecuteJSON(ctx, "filter_compile", toolArgs)
	if err != nil {
		return err
	}
	expression := compiledExpression(result)
	if expression == "" {
		return fmt.Errorf("compiled filter has no expression")
	}
	if err := clipboard.WriteAll(expression); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	if !quiet {
		fmt.Fprintln(cmd.ErrOrStderr(), "Compiled expression copied to clipboard")
	}
	return nil
}

// compiledExpression digs the expression out of a filter_compile result
func compiledExpression(result interface{}) string {
	doc, ok := result.(map[string]interface{})
	if !ok {
		return ""
	}
	compiled, ok := doc["compiled"].(map[string]interface{})
	if !ok {
		return ""
	}
	expression, _ := compiled["expression"].(string)
	return expression
}
