// Package testutil provides testing utilities for the taskloop project.
package testutil

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// MockCommandFunc creates a mock command that outputs the given response.
// Usage: claude.CommandContext = testutil.MockCommandFunc(output)
func MockCommandFunc(output string) func(ctx context.Context, name string, args ...string) *exec.Cmd {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "echo", "-n", output)
	}
}

// FailingCommandFunc creates a mock command that writes stderr and exits 1.
func FailingCommandFunc(stderr string) func(ctx context.Context, name string, args ...string) *exec.Cmd {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sh", "-c", `printf '%s' "$1" >&2; exit 1`, "sh", stderr)
	}
}

// CaptureCommandFunc records the arguments of every invocation and outputs
// the given response.
func CaptureCommandFunc(output string, calls *[][]string) func(ctx context.Context, name string, args ...string) *exec.Cmd {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		*calls = append(*calls, append([]string{name}, args...))
		return exec.CommandContext(ctx, "echo", "-n", output)
	}
}

// SetupConfigHome points XDG_CONFIG_HOME and HOME at a fresh temp directory
// (symlinks resolved for macOS) and returns it.
func SetupConfigHome(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	// Resolve symlinks for macOS (/var -> /private/var)
	if resolved, err := filepath.EvalSymlinks(tmpDir); err != nil {
		t.Logf("warning: could not resolve symlinks for temp dir: %v", err)
	} else {
		tmpDir = resolved
	}

	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv("HOME", tmpDir)

	if err := os.MkdirAll(filepath.Join(tmpDir, "taskloop"), 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	return tmpDir
}
