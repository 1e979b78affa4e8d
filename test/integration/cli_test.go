//go:build integration

package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCLIWorkflow_Explore browses the configured API with the restfully binary
func TestCLIWorkflow_Explore(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)
	config.SkipIfMissingBinary(t)

	runner := NewCommandRunner(config, t)

	// 1. List the links of the entry point
	stdout, stderr, err := runner.Run("links")
	require.NoError(t, err, "Failed to list links: %s", stderr)
	assert.Contains(t, stdout, config.Collection)

	// 2. Follow the collection and print it as JSON
	stdout, stderr, err = runner.Run("get", "--follow", config.Collection, "--output", "json")
	require.NoError(t, err, "Failed to get collection: %s", stderr)
	AssertJSONOutput(t, stdout)

	// 3. List a few items
	stdout, stderr, err = runner.Run("items", "--follow", config.Collection, "--limit", "3")
	require.NoError(t, err, "Failed to list items: %s", stderr)
	assert.NotEmpty(t, stdout)

	// 4. Show the built-in media types
	stdout, stderr, err = runner.Run("types", "--media-type", "grid5000")
	require.NoError(t, err, "Failed to list media types: %s", stderr)
	assert.Contains(t, stdout, "grid5000")
}
