package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/portman/internal/registry"
)

func TestFormatProject(t *testing.T) {
	tests := []struct {
		name     string
		project  registry.Project
		expected string
	}{
		{
			name:     "port only",
			project:  registry.Project{Port: 3000},
			expected: "app :3000",
		},
		{
			name:     "with directory",
			project:  registry.Project{Port: 3000, Directory: "/projects/app"},
			expected: "app :3000 (/projects/app)",
		},
		{
			name:     "with linked port",
			project:  registry.Project{Port: 3001, LinkedPort: 3000},
			expected: "app :3001 -> :3000",
		},
		{
			name:     "everything",
			project:  registry.Project{Port: 3001, Directory: "/projects/app", LinkedPort: 3000},
			expected: "app :3001 -> :3000 (/projects/app)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, formatProject("app", tt.project, false))
		})
	}
}

func TestParsePort(t *testing.T) {
	port, err := parsePort("3000")
	require.NoError(t, err)
	require.Equal(t, uint16(3000), port)

	port, err = parsePort("65535")
	require.NoError(t, err)
	require.Equal(t, uint16(65535), port)

	for _, raw := range []string{"", "abc", "-1", "65536", "30.5"} {
		_, err := parsePort(raw)
		require.Error(t, err, "expected %q to be rejected", raw)
	}
}

// resetFlags restores every command flag to its default so invocations are
// independent, like separate processes would be.
func resetFlags() {
	createNoActivate = false
	createOverwrite = false
	createLinkPort = 0
	getExtended = false
}

// runCommand executes a portman invocation against the test environment and
// returns its combined output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestCommands_ProjectLifecycle(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("PORTMAN_DATA_DIR", dataDir)
	t.Setenv("PORTMAN_CONFIG", "")
	// Keep proxy sync writes inside the sandbox. The reload itself fails
	// without a caddy service, which commands treat as a warning.
	t.Setenv("HOMEBREW_PREFIX", t.TempDir())

	cwd, err := os.Getwd()
	require.NoError(t, err)

	out, err := runCommand(t, "create", "myapp")
	require.NoError(t, err)
	require.Equal(t, "3000\n", out)

	// Creating again with the same binding is a no-op.
	out, err = runCommand(t, "create", "myapp")
	require.NoError(t, err)
	require.Equal(t, "3000\n", out)

	// The current directory activates the project.
	out, err = runCommand(t, "get")
	require.NoError(t, err)
	require.Equal(t, "3000\n", out)

	out, err = runCommand(t, "link", "9000", "myapp")
	require.NoError(t, err)
	require.Contains(t, out, "Linked port 9000 to project myapp")

	out, err = runCommand(t, "list")
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("myapp :3000 -> :9000 (%s)\n", cwd), out)

	// The registry survived on disk and the generated Caddyfile tracks it.
	require.FileExists(t, filepath.Join(dataDir, "registry.toml"))
	caddyfile, err := os.ReadFile(filepath.Join(dataDir, "Caddyfile"))
	require.NoError(t, err)
	require.Contains(t, string(caddyfile), "myapp.localhost")
	require.Contains(t, string(caddyfile), "http://localhost:9000")

	out, err = runCommand(t, "unlink", "myapp")
	require.NoError(t, err)
	require.Contains(t, out, "Unlinked port 9000 from project myapp")

	out, err = runCommand(t, "delete", "myapp")
	require.NoError(t, err)
	require.Contains(t, out, "Deleted project myapp")

	out, err = runCommand(t, "list")
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestCommands_GetUnknownProject(t *testing.T) {
	t.Setenv("PORTMAN_DATA_DIR", t.TempDir())
	t.Setenv("PORTMAN_CONFIG", "")
	t.Setenv("HOMEBREW_PREFIX", t.TempDir())

	_, err := runCommand(t, "get", "missing")
	require.ErrorIs(t, err, registry.ErrNotFound)
}

func TestCommands_CreateNoActivateRequiresName(t *testing.T) {
	t.Setenv("PORTMAN_DATA_DIR", t.TempDir())
	t.Setenv("PORTMAN_CONFIG", "")
	t.Setenv("HOMEBREW_PREFIX", t.TempDir())

	_, err := runCommand(t, "create", "--no-activate")
	require.Error(t, err)
	require.Contains(t, err.Error(), "explicit project name")
}

func TestCommands_CreateOverwriteRebindsDerivedName(t *testing.T) {
	t.Setenv("PORTMAN_DATA_DIR", t.TempDir())
	t.Setenv("PORTMAN_CONFIG", "")
	t.Setenv("HOMEBREW_PREFIX", t.TempDir())

	first := filepath.Join(t.TempDir(), "app")
	require.NoError(t, os.MkdirAll(first, 0o755))
	t.Chdir(first)

	out, err := runCommand(t, "create")
	require.NoError(t, err)
	require.Equal(t, "3000\n", out)

	// A second directory with the same basename derives the same name.
	second := filepath.Join(t.TempDir(), "app")
	require.NoError(t, os.MkdirAll(second, 0o755))
	t.Chdir(second)

	_, err = runCommand(t, "create")
	require.ErrorIs(t, err, registry.ErrDuplicateName)

	// With --overwrite the derived name resolves to the existing project
	// and the binding moves instead of failing.
	out, err = runCommand(t, "create", "--overwrite")
	require.NoError(t, err)
	require.Equal(t, "3000\n", out)

	out, err = runCommand(t, "list")
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("app :3000 (%s)\n", second), out)
}

func TestCommands_GetExtendedWireFormat(t *testing.T) {
	t.Setenv("PORTMAN_DATA_DIR", t.TempDir())
	t.Setenv("PORTMAN_CONFIG", "")
	t.Setenv("HOMEBREW_PREFIX", t.TempDir())

	cwd, err := os.Getwd()
	require.NoError(t, err)

	_, err = runCommand(t, "create", "hooked")
	require.NoError(t, err)
	_, err = runCommand(t, "link", "9000", "hooked")
	require.NoError(t, err)

	// The shell hooks parse exactly four lines: port, name, directory,
	// linked port.
	out, err := runCommand(t, "get", "--extended", "hooked")
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("3000\nhooked\n%s\n9000\n", cwd), out)

	// Absent values stay as blank lines so the line positions are stable.
	_, err = runCommand(t, "create", "--no-activate", "bare")
	require.NoError(t, err)

	out, err = runCommand(t, "get", "--extended", "bare")
	require.NoError(t, err)
	require.Equal(t, "3001\nbare\n\n\n", out)
}

func TestCommands_InitFish(t *testing.T) {
	out, err := runCommand(t, "init", "fish")
	require.NoError(t, err)
	require.Contains(t, out, "function __portman_activate")
}

func TestCommands_InitUnknownShell(t *testing.T) {
	_, err := runCommand(t, "init", "zsh")
	require.Error(t, err)
}

func TestCommands_Caddyfile(t *testing.T) {
	t.Setenv("PORTMAN_DATA_DIR", t.TempDir())
	t.Setenv("PORTMAN_CONFIG", "")
	t.Setenv("HOMEBREW_PREFIX", t.TempDir())

	_, err := runCommand(t, "create", "proxied")
	require.NoError(t, err)

	out, err := runCommand(t, "caddyfile")
	require.NoError(t, err)
	require.Contains(t, out, "localhost {")
	require.Contains(t, out, "proxied.localhost {")
	require.Contains(t, out, "reverse_proxy 127.0.0.1:3000")
}
