//go:build integration

package integration

import (
	"bytes"
	"os"
	"os/exec"
	"strings"
	"testing"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	URI        string
	Username   string
	Password   string
	Collection string
	ItemID     string
	BinaryPath string
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		URI:        os.Getenv("RESTFULLY_URI"),
		Username:   os.Getenv("RESTFULLY_USERNAME"),
		Password:   os.Getenv("RESTFULLY_PASSWORD"),
		Collection: getenv("RESTFULLY_TEST_COLLECTION", "sites"),
		ItemID:     os.Getenv("RESTFULLY_TEST_ITEM"),
		BinaryPath: getBinaryPath(),
		Verbose:    os.Getenv("RESTFULLY_TEST_VERBOSE") == "true",
	}
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

// getBinaryPath determines the path to the restfully binary
func getBinaryPath() string {
	if path := os.Getenv("RESTFULLY_BINARY_PATH"); path != "" {
		return path
	}

	for _, candidate := range []string{"../../restfully", "./restfully", "../restfully"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "restfully"
}

// SkipIfMissingConfig skips test if no API is configured
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.URI == "" {
		t.Skip("RESTFULLY_URI not set, skipping integration test")
	}
}

// SkipIfMissingBinary skips test if the restfully binary cannot be found
func (config *TestConfig) SkipIfMissingBinary(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(config.BinaryPath); err != nil {
		t.Skipf("restfully binary not found at %s, skipping integration test", config.BinaryPath)
	}
}

// CommandRunner runs restfully commands against the configured API
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config: config,
		t:      t,
	}
}

// Run executes a restfully command and returns output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	args = append([]string{"--uri", runner.config.URI}, args...)
	if runner.config.Username != "" {
		args = append(args, "--username", runner.config.Username, "--password", runner.config.Password)
	}

	cmd := exec.Command(runner.config.BinaryPath, args...) // #nosec G204 -- test binary
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// AssertJSONOutput verifies command output is valid JSON
func AssertJSONOutput(t *testing.T, output string) {
	t.Helper()

	output = strings.TrimSpace(output)
	if !strings.HasPrefix(output, "{") && !strings.HasPrefix(output, "[") {
		t.Errorf("Output does not appear to be JSON: %s", output)
	}
}
