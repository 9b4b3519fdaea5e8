// Package paths provides path resolution for portman's data files.
package paths

import (
	"os"
	"path/filepath"
)

// DataDir returns the directory holding portman's registry, generated
// Caddyfile, and default config. The PORTMAN_DATA_DIR environment variable
// overrides the default of ~/.config/portman.
func DataDir() (string, error) {
	if dir := os.Getenv("PORTMAN_DATA_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "portman"), nil
}

// ConfigFile returns the path to the allocation config file and whether the
// location was customized with the PORTMAN_CONFIG environment variable.
func ConfigFile() (string, bool, error) {
	if path := os.Getenv("PORTMAN_CONFIG"); path != "" {
		return path, true, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", false, err
	}
	return filepath.Join(dir, "config.toml"), false, nil
}

// RegistryFile returns the path to the persisted registry.
func RegistryFile() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "registry.toml"), nil
}

// CaddyImportFile returns the path of the generated Caddyfile that the root
// Caddyfile imports.
func CaddyImportFile() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "Caddyfile"), nil
}

// GalleryRoot returns the directory served by the localhost dashboard rule.
func GalleryRoot() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gallery_www"), nil
}
