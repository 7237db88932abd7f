package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"minigit/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the command tree against root, resetting sticky flag values first.
func run(t *testing.T, root string, args ...string) error {
	t.Helper()
	for _, c := range rootCmd.Commands() {
		for name, def := range map[string]string{"message": "", "lines": "0"} {
			if c.Flags().Lookup(name) != nil {
				require.NoError(t, c.Flags().Set(name, def))
			}
		}
	}
	rootCmd.SetArgs(append([]string{"--root", root}, args...))
	return rootCmd.Execute()
}

func TestCommandFlow(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(a, []byte("hello"), 0644))

	err := run(t, root, "history")
	assert.Equal(t, exitLifecycle, exitCode(err))

	require.NoError(t, run(t, root, "init"))
	assert.Equal(t, exitLifecycle, exitCode(run(t, root, "init")))

	require.NoError(t, run(t, root, "add", "a.txt"))
	assert.Equal(t, exitUsage, exitCode(run(t, root, "add", "a.txt")))
	assert.Equal(t, exitUsage, exitCode(run(t, root, "add", "missing.txt")))

	require.NoError(t, os.WriteFile(a, []byte("world"), 0644))
	require.NoError(t, run(t, root, "commit", "-m", "edit"))

	require.NoError(t, run(t, root, "checkout", "1"))
	data, err := os.ReadFile(a)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	assert.Equal(t, exitNoCommit, exitCode(run(t, root, "checkout", "7")))
	assert.Equal(t, exitUsage, exitCode(run(t, root, "checkout", "seven")))

	require.NoError(t, run(t, root, "history"))
	require.NoError(t, run(t, root, "history", "--lines", "2"))
	assert.Equal(t, exitUsage, exitCode(run(t, root, "history", "-n", "3")))

	require.NoError(t, run(t, root, "remove", "a.txt"))
	assert.Equal(t, exitUsage, exitCode(run(t, root, "remove", "a.txt")))

	assert.Equal(t, exitUsage, exitCode(run(t, root, "checkout")))
	assert.Equal(t, exitUsage, exitCode(run(t, root, "history", "--bogus")))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, exitOK},
		{fmt.Errorf("disk on fire"), exitInternal},
		{usageError{fmt.Errorf("bad flag")}, exitUsage},
		{errors.InvalidPath("x", "missing"), exitUsage},
		{errors.AlreadyTracked("x"), exitUsage},
		{errors.NotFound("x"), exitUsage},
		{errors.InvalidRange(3, 1), exitUsage},
		{fmt.Errorf("wrapped: %w", errors.NotInitialized(".minigit")), exitLifecycle},
		{errors.AlreadyInitialized(".minigit"), exitLifecycle},
		{errors.CommitNotFound(9), exitNoCommit},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, exitCode(tt.err), "%v", tt.err)
	}
}
