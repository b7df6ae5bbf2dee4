package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"import", "preview", "search", "migrate", "serve"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "founder-resolve", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestImportCommand_Flags(t *testing.T) {
	for _, name := range []string{"file", "decisions", "mapping", "chunk-size", "threshold", "primary", "dry-run", "json"} {
		require.NotNil(t, importCmd.Flags().Lookup(name), "import should have --%s", name)
	}
	assert.Equal(t, "true", importCmd.Flags().Lookup("primary").DefValue)
	assert.Equal(t, "0", importCmd.Flags().Lookup("chunk-size").DefValue)
}

func TestSearchCommand_Flags(t *testing.T) {
	require.NotNil(t, searchCmd.Flags().Lookup("name"))
	flag := searchCmd.Flags().Lookup("threshold")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}
