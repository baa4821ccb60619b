package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_InvalidProfile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	invalidHCL := `
		computer "workstation" {
			work_dir = "/tmp"
		// Missing closing brace here
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "profile.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(invalidHCL), 0o600), "failed to set up test file")

	args := []string{"--db", filepath.Join(tempDir, "p.db"), filePath}
	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(context.Background(), out, io.Discard, args)

	// --- Assert ---
	require.Error(t, runErr)
	require.Contains(t, runErr.Error(), "failed to load profile")
	require.Contains(t, runErr.Error(), "failed to parse")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}

	err := run(context.Background(), out, io.Discard, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, io.Discard, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_DryRun(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	tempDir := t.TempDir()
	profile := fmt.Sprintf(`
computer "workstation" {
  work_dir = %q
}

code "dakota" {
  computer = "workstation"
  exec     = "dakota"
  plugin   = "dakota.dakota"
}
`, filepath.Join(tempDir, "work"))
	filePath := filepath.Join(tempDir, "profile.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(profile), 0o600))
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, io.Discard, []string{"--dry-run", "--db", filepath.Join(tempDir, "p.db"), "-p", filePath})

	// --- Assert ---
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "Completed.", lines[2])
	require.FileExists(t, filepath.Join(lines[1], "dakota.in"))
}
