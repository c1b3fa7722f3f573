// Package config loads a star's on-disk configuration: identity, network
// peers, registry storage, logging, and telemetry, the same
// defaults-then-file-then-env layering the teacher's own daemon config uses,
// adapted from one process's model settings to one star's routing settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/starlane-io/starlane/internal/point"
)

// Config holds everything needed to start one star.
type Config struct {
	Star      StarConfig      `toml:"star"`
	Network   NetworkConfig   `toml:"network"`
	Registry  RegistryConfig  `toml:"registry"`
	Logging   LoggingConfig   `toml:"logging"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// StarConfig identifies this star and what it hosts.
type StarConfig struct {
	Constellation string `toml:"constellation"`
	Name          string `toml:"name"`
	Index         int    `toml:"index"`
	Sub           string `toml:"sub"` // one of point.StarSub's values, e.g. "Central"
}

// Key returns the point.StarKey this star identifies itself with.
func (s StarConfig) Key() point.StarKey {
	return point.StarKey{Constellation: s.Constellation, Name: s.Name, Index: s.Index}
}

// NetworkConfig controls the hyperlane listener and the peers this star
// dials out to on startup.
type NetworkConfig struct {
	Listen            string   `toml:"listen"`              // address the hyperlane listener binds, e.g. "127.0.0.1:7420"
	Peers             []string `toml:"peers"`                // addresses to dial and handshake on startup
	HeartbeatInterval string   `toml:"heartbeat_interval"`  // parsed but not read: no Hyp<Bounce> probes are sent
}

// RegistryConfig controls the registry storage backend.
type RegistryConfig struct {
	Driver string `toml:"driver"` // currently only "sqlite" (package registry/sqlstore)
	Dir    string `toml:"dir"`    // directory sqlstore.Open manages (holds registry.db)
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// TelemetryConfig controls observability surfaces.
type TelemetryConfig struct {
	Enabled    bool   `toml:"enabled"`
	HTTPAddr   string `toml:"http_addr"`   // address the /health and /metrics server binds
	Prometheus bool   `toml:"prometheus"` // expose /metrics
}

// DefaultConfig returns a sensible default configuration for a single,
// standalone Central star.
func DefaultConfig() Config {
	home := StarHome()
	return Config{
		Star: StarConfig{
			Constellation: "sun",
			Name:          "alpha",
			Index:         0,
			Sub:           string(point.StarCentral),
		},
		Network: NetworkConfig{
			Listen:            "127.0.0.1:7420",
			Peers:             nil,
			HeartbeatInterval: "10s",
		},
		Registry: RegistryConfig{
			Driver: "sqlite",
			Dir:    home,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(home, "starlane.log"),
		},
		Telemetry: TelemetryConfig{
			Enabled:    true,
			HTTPAddr:   "127.0.0.1:7421",
			Prometheus: true,
		},
	}
}

// LoadConfig reads config from path, falling back to defaults for any field
// the file doesn't set and to $STARLANE_HOME/config.toml when path is "".
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = filepath.Join(StarHome(), "config.toml")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // no config file yet — use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path (or $STARLANE_HOME/config.toml when path is
// "").
func SaveConfig(cfg Config, path string) error {
	if path == "" {
		path = filepath.Join(StarHome(), "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// StarHome returns the star's data directory: $STARLANE_HOME if set,
// otherwise ~/.starlane.
func StarHome() string {
	if env := os.Getenv("STARLANE_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".starlane")
}
