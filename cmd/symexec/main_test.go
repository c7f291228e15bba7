package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCommandPrintsAllScenarios(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"list"})
	require.NoError(t, root.Execute())

	for _, name := range []string{"scenario1", "scenario2", "scenario3", "scenario4", "scenario5", "scenario6"} {
		assert.Contains(t, out.String(), name)
	}
}

func TestDescribeCommandRendersSource(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"describe", "scenario1"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "def non_reachable(a):")
}

func TestDescribeCommandUnknownScenario(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"describe", "no-such-scenario"})
	root.SilenceUsage = true
	root.SilenceErrors = true
	err := root.Execute()
	require.Error(t, err)
}

func TestRunCommandExploresScenario5(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"run", "scenario5", "--budget", "10"})
	require.NoError(t, root.Execute())
}
