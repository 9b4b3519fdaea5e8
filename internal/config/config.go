// Package config provides allocation configuration types and loading for portman.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	"github.com/zjrosen/portman/internal/log"
)

// Config holds the port allocation configuration.
//
// Ranges is an ordered list of inclusive [start, end] port ranges that
// allocation scans in order. Ranges may overlap. Reserved ports are excluded
// from allocation regardless of range membership.
type Config struct {
	Ranges   [][]uint16 `mapstructure:"ranges"`
	Reserved []uint16   `mapstructure:"reserved"`
}

// Defaults returns a Config with the default allocation settings.
func Defaults() Config {
	return Config{
		Ranges:   [][]uint16{{3000, 3999}},
		Reserved: []uint16{},
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if len(c.Ranges) == 0 {
		return fmt.Errorf("port ranges must not be empty")
	}
	for _, r := range c.Ranges {
		if len(r) != 2 {
			return fmt.Errorf("port range %v must have exactly a start and an end", r)
		}
		if r[0] > r[1] {
			return fmt.Errorf("port range (%d-%d) start must not be greater than range end", r[0], r[1])
		}
	}
	return nil
}

// ReservedSet returns the reserved ports as a set.
func (c Config) ReservedSet() map[uint16]struct{} {
	reserved := make(map[uint16]struct{}, len(c.Reserved))
	for _, port := range c.Reserved {
		reserved[port] = struct{}{}
	}
	return reserved
}

// String renders the configuration for `portman config show`.
func (c Config) String() string {
	ranges := make([]string, 0, len(c.Ranges))
	for _, r := range c.Ranges {
		if len(r) == 2 {
			ranges = append(ranges, fmt.Sprintf("%d-%d", r[0], r[1]))
		}
	}
	out := fmt.Sprintf("Allowed port ranges: %s", strings.Join(ranges, " & "))

	if len(c.Reserved) > 0 {
		reserved := make([]string, 0, len(c.Reserved))
		for _, port := range c.Reserved {
			reserved = append(reserved, fmt.Sprintf("%d", port))
		}
		out += fmt.Sprintf("\nReserved ports: %s", strings.Join(reserved, ", "))
	}

	return out
}

// Load reads the configuration from the TOML file at path.
//
// A missing file yields the defaults unless required is set (the path came
// from the PORTMAN_CONFIG environment variable), in which case it is an
// error. An unreadable or invalid file is always an error.
func Load(path string, required bool) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	defaults := Defaults()
	v.SetDefault("ranges", defaults.Ranges)
	v.SetDefault("reserved", defaults.Reserved)

	if err := v.ReadInConfig(); err != nil {
		if !fileMissing(err) {
			log.ErrorErr(log.CatConfig, "Failed to read config", err, "path", path)
			return Config{}, fmt.Errorf("reading config at %q: %w", path, err)
		}
		if required {
			return Config{}, fmt.Errorf("custom config file at %q does not exist", path)
		}
		log.Debug(log.CatConfig, "No config file, using defaults", "path", path)
		return defaults, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config at %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config at %q: %w", path, err)
	}

	log.Debug(log.CatConfig, "Loaded config", "path", path, "ranges", len(cfg.Ranges), "reserved", len(cfg.Reserved))
	return cfg, nil
}

// fileMissing reports whether err indicates a missing config file. viper
// returns its own not-found type when searching config paths, but a plain
// fs error when pointed at an explicit file.
func fileMissing(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return true
	}
	return errors.Is(err, fs.ErrNotExist)
}
