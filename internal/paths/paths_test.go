package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataDir_EnvOverride(t *testing.T) {
	t.Setenv("PORTMAN_DATA_DIR", "/custom/data")

	dir, err := DataDir()
	require.NoError(t, err)
	require.Equal(t, "/custom/data", dir)
}

func TestDataDir_DefaultUnderHome(t *testing.T) {
	t.Setenv("PORTMAN_DATA_DIR", "")
	t.Setenv("HOME", "/home/someone")

	dir, err := DataDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/home/someone", ".config", "portman"), dir)
}

func TestConfigFile(t *testing.T) {
	t.Setenv("PORTMAN_DATA_DIR", "/custom/data")
	t.Setenv("PORTMAN_CONFIG", "")

	path, custom, err := ConfigFile()
	require.NoError(t, err)
	require.False(t, custom)
	require.Equal(t, "/custom/data/config.toml", path)
}

func TestConfigFile_EnvOverride(t *testing.T) {
	t.Setenv("PORTMAN_CONFIG", "/elsewhere/portman.toml")

	path, custom, err := ConfigFile()
	require.NoError(t, err)
	require.True(t, custom)
	require.Equal(t, "/elsewhere/portman.toml", path)
}

func TestDerivedPaths(t *testing.T) {
	t.Setenv("PORTMAN_DATA_DIR", "/custom/data")

	registry, err := RegistryFile()
	require.NoError(t, err)
	require.Equal(t, "/custom/data/registry.toml", registry)

	caddyfile, err := CaddyImportFile()
	require.NoError(t, err)
	require.Equal(t, "/custom/data/Caddyfile", caddyfile)

	gallery, err := GalleryRoot()
	require.NoError(t, err)
	require.Equal(t, "/custom/data/gallery_www", gallery)
}
