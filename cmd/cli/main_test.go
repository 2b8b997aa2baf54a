package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_ShouldExit(t *testing.T) {
	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	// The run function should see `shouldExit=true` and return a nil error.
	err := run(out, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	// --- Arrange ---
	// Providing an unknown flag will cause cli.Parse to return an error.
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	// The run function should propagate the error from cli.Parse.
	err := run(out, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_InvalidSpec(t *testing.T) {
	// --- Arrange ---
	// A change specification missing required fields must fail app startup.
	tempDir := t.TempDir()
	specPath := filepath.Join(tempDir, "changes.yaml")
	err := os.WriteFile(specPath, []byte("repositories:\n  - repo: only-repo-no-owner\n"), 0600)
	require.NoError(t, err, "failed to set up test file")

	args := []string{"-dry-run", "-config", specPath}
	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(out, args)

	// --- Assert ---
	require.Error(t, runErr, "run() should fail on an invalid change specification")
	require.Contains(t, runErr.Error(), "owner")
}

func TestRun_DryRun(t *testing.T) {
	// --- Arrange ---
	tempDir := t.TempDir()
	specPath := filepath.Join(tempDir, "changes.yaml")
	spec := `
repositories:
  - owner: acme
    repo: platform
    files:
      - path: terraform/main.tf
        changes:
          variables:
            - image_tag:
                image_tag:
                  update:
                    - from: ["1.0"]
                      to: "1.2"
`
	err := os.WriteFile(specPath, []byte(spec), 0600)
	require.NoError(t, err, "failed to set up test file")

	args := []string{"-dry-run", "-config", specPath}
	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(out, args)

	// --- Assert ---
	require.NoError(t, runErr, "a dry run should complete without touching any repository")
	require.Contains(t, out.String(), "dry-run")
}
