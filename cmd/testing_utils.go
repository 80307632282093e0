package cmd

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yigitkabak/aperium/internal/configs"
)

// setupTestEnvironment points aper at a temporary home, runs scripts with cat
// instead of bash, disables sudo and changes into a temporary working
// directory. Everything is restored when the test ends.
func setupTestEnvironment(t *testing.T) string {
	t.Helper()

	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get original working directory: %v", err)
	}
	originalSettings := configs.AperiumSettings
	originalNoColor := color.NoColor

	tempDir := t.TempDir()
	homeDir := filepath.Join(tempDir, "home")
	workDir := filepath.Join(tempDir, "work")
	if err := os.MkdirAll(workDir, 0755); err != nil {
		t.Fatalf("Failed to create work directory: %v", err)
	}

	t.Setenv("APERIUM_HOME", filepath.Join(homeDir, ".aperium"))
	t.Setenv("NO_COLOR", "1")
	color.NoColor = true

	settings := configs.DefaultSettings(homeDir)
	settings.UseSudo = false
	settings.Shell = "cat"
	settings.NixConfigPath = filepath.Join(tempDir, "nixos", "configuration.nix")
	settings.NixModulesDir = filepath.Join(tempDir, "nixos", "aperium-modules")
	configs.AperiumSettings = settings

	if err := os.Chdir(workDir); err != nil {
		t.Fatalf("Failed to change to work directory: %v", err)
	}

	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Fatalf("Failed to change to original directory: %v", err)
		}
		configs.AperiumSettings = originalSettings
		color.NoColor = originalNoColor
		RootCmd.SetIn(nil)
		ResetGlobalState()
	})

	return workDir
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	stdoutChan := make(chan string, 1)
	stderrChan := make(chan string, 1)

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stdoutReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		stdoutChan <- buf.String()
	}()

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stderrReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		stderrChan <- buf.String()
	}()

	err := fn()

	stdoutWriter.Close()
	stderrWriter.Close()

	os.Stdout = originalStdout
	os.Stderr = originalStderr

	return <-stdoutChan + <-stderrChan, err
}

// runCLI executes aper with args against a clean command tree and returns the
// combined output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	ResetGlobalState()
	resetFlags(RootCmd)
	RootCmd.SetArgs(args)

	return captureOutput(Execute)
}

// resetFlags restores every flag in the tree to its default so a previous
// run's values and Changed markers do not leak into the next one.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}
