package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelfUpdateCommand(t *testing.T) {
	cmd := newSelfUpdateCmd()

	assert.Equal(t, "self-update", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.Error(t, cmd.Args(cmd, []string{"extra"}), "self-update takes no arguments")
	assert.Equal(t, "flewid/flewid", githubRepoSlug)
}

func TestRunSelfUpdate_RefusesDevelopmentBuilds(t *testing.T) {
	originalVersion := rootCmd.Version
	t.Cleanup(func() { rootCmd.Version = originalVersion })

	for _, version := range []string{"", "dev"} {
		t.Run("version "+version, func(t *testing.T) {
			rootCmd.Version = version

			err := runSelfUpdate(nil, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "cannot self-update a development version")
		})
	}
}

func TestSelfUpdateHelp(t *testing.T) {
	cmd := newSelfUpdateCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Checks for the latest release of flewid")
	assert.Contains(t, buf.String(), "self-update")
}
