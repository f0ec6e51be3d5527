package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetVersion(t *testing.T) {
	originalVersion := rootCmd.Version
	t.Cleanup(func() { rootCmd.Version = originalVersion })

	SetVersion("1.2.3-test")
	assert.Equal(t, "1.2.3-test", rootCmd.Version)
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "flewid", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.True(t, rootCmd.SilenceUsage)

	for _, flag := range []string{"config-path", "log-level", "output", "quiet", "endpoint"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), "missing persistent flag --%s", flag)
	}
}

func TestVersionCommand(t *testing.T) {
	originalVersion := rootCmd.Version
	t.Cleanup(func() { rootCmd.Version = originalVersion })
	rootCmd.Version = "1.0.0"

	var buf bytes.Buffer
	versionCmd := newVersionCmd()
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)

	assert.Equal(t, "flewid version 1.0.0\n", buf.String())
}

func subcommandNames(cmd *cobra.Command) map[string]bool {
	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	return names
}

func TestSubcommands(t *testing.T) {
	tests := []struct {
		parent *cobra.Command
		want   []string
	}{
		{rootCmd, []string{"version", "self-update", "serve", "transform", "filter", "template", "variables"}},
		{templateCmd, []string{"list", "get", "instantiate", "create", "update", "delete", "validate"}},
		{variablesCmd, []string{"resolve", "references", "check", "validate"}},
		{transformCmd, []string{"run", "utilities"}},
		{filterCmd, []string{"compile"}},
	}

	for _, tt := range tests {
		t.Run(tt.parent.Name(), func(t *testing.T) {
			names := subcommandNames(tt.parent)
			for _, want := range tt.want {
				assert.True(t, names[want], "missing subcommand %s %s", tt.parent.Name(), want)
			}
		})
	}
}

func TestRootCommandHelp(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"--help"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "flewid")
	assert.Contains(t, buf.String(), "variable references")
}
