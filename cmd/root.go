package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"flewid/internal/color"
)

var (
	// configPath points at a single configuration directory
	configPath string
	// logLevel overrides globalSettings.logLevel
	logLevel string
	// outputFormat selects table, json or yaml output
	outputFormat string
	// quiet suppresses non-essential output
	quiet bool
	// endpoint of a running flewid server; empty runs tools in process
	endpoint string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "flewid",
	Short: "Data-flow tooling for AWS workflow templates",
	Long: `flewid moves data between the steps of AWS workflows.

It resolves {{...}} variable references in step configurations, runs
transform snippets, compiles filter expressions into key-value store
predicates and instantiates workflow templates from a catalog.

Every command works on its own. Use 'flewid serve' to expose the same
operations to MCP clients, and --endpoint to point commands at it.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. invalid arguments, failed tool calls)
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		color.InitializeFromEnv()
	},
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v // Set cobra's version field as well
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "flewid version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())

	rootCmd.PersistentFlags().StringVar(&configPath, "config-path", "", "Configuration directory (default: layered ~/.config/flewid and ./.flewid)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Endpoint of a running flewid server (e.g. http://localhost:8090/mcp)")
}
