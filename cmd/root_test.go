package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	expected := []string{"search", "research", "status", "serve", "runs", "cache"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "autoscout", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestSearchCommand_Flags(t *testing.T) {
	require.NotNil(t, searchCmd.Flags().Lookup("location"))
	require.NotNil(t, searchCmd.Flags().Lookup("tenant"))
	require.NotNil(t, searchCmd.Flags().Lookup("json"))
}

func TestResearchCommand_Flags(t *testing.T) {
	require.NotNil(t, researchCmd.Flags().Lookup("name"))
	require.NotNil(t, researchCmd.Flags().Lookup("url"))
	require.NotNil(t, researchCmd.Flags().Lookup("tenant"))
}
