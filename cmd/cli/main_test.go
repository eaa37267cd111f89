package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/f2eflow/internal/cli"
	"github.com/stretchr/testify/require"
)

func TestRun_InvalidSettings(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A settings file with a syntax error must fail at startup.
	tempDir := t.TempDir()
	err := os.WriteFile(filepath.Join(tempDir, "f2e.hcl"), []byte("project = {\n"), 0600)
	require.NoError(t, err, "failed to set up test file")
	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(context.Background(), out, []string{"--root", tempDir})

	// --- Assert ---
	var exitErr *cli.ExitError
	require.True(t, errors.As(runErr, &exitErr), "run() should return an ExitError, got %v", runErr)
	require.Equal(t, 2, exitErr.Code)
	require.Contains(t, exitErr.Message, "failed to parse")
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, []string{"-h"})

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error for help")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_LoadsDotEnv(t *testing.T) {
	// --- Arrange ---
	// NODE_ENV from .env in the working directory ends up in the bundles.
	tempDir := t.TempDir()
	files := map[string]string{
		".env":          "NODE_ENV=staging\n",
		"f2e.hcl":       "project = \"shop\"\nuse_jade = true\n",
		"src/js/app.js": "export const env = process.env.NODE_ENV;\n",
	}
	for name, content := range files {
		path := filepath.Join(tempDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	t.Chdir(tempDir)
	t.Setenv("NODE_ENV", "")
	os.Unsetenv("NODE_ENV")
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, []string{"run", "compile:js"})

	// --- Assert ---
	require.NoError(t, err, "output:\n%s", out.String())
	bundle, err := os.ReadFile(filepath.Join(tempDir, "dist", "js", "app.js"))
	require.NoError(t, err)
	require.Contains(t, string(bundle), `"staging"`)
}
