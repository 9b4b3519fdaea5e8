package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "portman.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	require.Equal(t, [][]uint16{{3000, 3999}}, cfg.Ranges)
	require.Empty(t, cfg.Reserved)
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "defaults", cfg: Defaults(), wantErr: false},
		{name: "multiple ranges", cfg: Config{Ranges: [][]uint16{{3000, 3999}, {8000, 8099}}}, wantErr: false},
		{name: "single port range", cfg: Config{Ranges: [][]uint16{{3000, 3000}}}, wantErr: false},
		{name: "overlapping ranges", cfg: Config{Ranges: [][]uint16{{3000, 3999}, {3500, 4500}}}, wantErr: false},
		{name: "no ranges", cfg: Config{}, wantErr: true},
		{name: "inverted range", cfg: Config{Ranges: [][]uint16{{3999, 3000}}}, wantErr: true},
		{name: "range missing end", cfg: Config{Ranges: [][]uint16{{3000}}}, wantErr: true},
		{name: "range with extra element", cfg: Config{Ranges: [][]uint16{{3000, 3500, 3999}}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfig_String(t *testing.T) {
	cfg := Config{
		Ranges:   [][]uint16{{3000, 3999}, {8000, 8099}},
		Reserved: []uint16{3306, 5432},
	}
	require.Equal(t, "Allowed port ranges: 3000-3999 & 8000-8099\nReserved ports: 3306, 5432", cfg.String())

	bare := Config{Ranges: [][]uint16{{3000, 3999}}}
	require.Equal(t, "Allowed port ranges: 3000-3999", bare.String())
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, "ranges = [[4000, 4999], [9000, 9099]]\nreserved = [4004]\n")

	cfg, err := Load(path, false)
	require.NoError(t, err)
	require.Equal(t, [][]uint16{{4000, 4999}, {9000, 9099}}, cfg.Ranges)
	require.Equal(t, []uint16{4004}, cfg.Reserved)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "reserved = [3001]\n")

	cfg, err := Load(path, false)
	require.NoError(t, err)
	require.Equal(t, Defaults().Ranges, cfg.Ranges)
	require.Equal(t, []uint16{3001}, cfg.Reserved)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")

	cfg, err := Load(path, false)
	require.NoError(t, err)
	require.Equal(t, Defaults(), cfg)
}

func TestLoad_MissingRequiredFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")

	_, err := Load(path, true)
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := writeConfig(t, "ranges = [[not toml")

	_, err := Load(path, false)
	require.Error(t, err)
}

func TestLoad_InvalidRanges(t *testing.T) {
	path := writeConfig(t, "ranges = [[3999, 3000]]\n")

	_, err := Load(path, false)
	require.Error(t, err)
}

func TestLoad_EmptyRanges(t *testing.T) {
	path := writeConfig(t, "ranges = []\n")

	_, err := Load(path, false)
	require.Error(t, err)
}
