package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	want := []string{"preprocess", "load", "migrate", "validate", "detail", "export-xlsx", "status"}
	got := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		got[c.Name()] = true
	}
	for _, name := range want {
		assert.True(t, got[name], "command %s not registered", name)
	}
}

func TestPreprocessFlags(t *testing.T) {
	for _, flag := range []string{"raw", "interim", "processed", "delimiter"} {
		require.NotNil(t, preprocessCmd.Flags().Lookup(flag), "flag %s", flag)
	}
}

func TestDetailRequiresArg(t *testing.T) {
	err := detailCmd.Args(detailCmd, []string{})
	assert.Error(t, err)
	assert.NoError(t, detailCmd.Args(detailCmd, []string{"101"}))
}
