package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starlane-io/starlane/internal/point"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Star.Constellation != "sun" {
		t.Errorf("Star.Constellation = %q, want %q", cfg.Star.Constellation, "sun")
	}
	if cfg.Network.Listen != "127.0.0.1:7420" {
		t.Errorf("Network.Listen = %q, want %q", cfg.Network.Listen, "127.0.0.1:7420")
	}
	if cfg.Registry.Driver != "sqlite" {
		t.Errorf("Registry.Driver = %q, want %q", cfg.Registry.Driver, "sqlite")
	}
	if !cfg.Telemetry.Prometheus {
		t.Error("Telemetry.Prometheus = false, want true")
	}
}

func TestStarConfigKey(t *testing.T) {
	cfg := StarConfig{Constellation: "sun", Name: "beta", Index: 2}
	want := point.StarKey{Constellation: "sun", Name: "beta", Index: 2}
	if got := cfg.Key(); got != want {
		t.Errorf("Key() = %+v, want %+v", got, want)
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Star.Constellation != DefaultConfig().Star.Constellation {
		t.Errorf("expected defaults when config file is absent")
	}
}

func TestSaveThenLoadConfigRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := DefaultConfig()
	cfg.Star.Name = "gamma"
	cfg.Star.Index = 3
	cfg.Network.Peers = []string{"127.0.0.1:7421", "127.0.0.1:7422"}

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file at %s: %v", path, err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if loaded.Star.Name != "gamma" || loaded.Star.Index != 3 {
		t.Errorf("loaded Star = %+v, want Name=gamma Index=3", loaded.Star)
	}
	if len(loaded.Network.Peers) != 2 || loaded.Network.Peers[0] != "127.0.0.1:7421" {
		t.Errorf("loaded Network.Peers = %v", loaded.Network.Peers)
	}
}

func TestLoadConfigRejectsMalformedTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("not = [valid"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error decoding malformed config")
	}
}

func TestStarHomeRespectsEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STARLANE_HOME", dir)
	if got := StarHome(); got != dir {
		t.Errorf("StarHome() = %q, want %q", got, dir)
	}
}
