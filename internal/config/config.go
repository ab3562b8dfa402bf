// Package config holds the application configuration. There are no
// global singletons: a Config is loaded once and handed to the store
// manager and migration pipeline at construction.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	// DataDir holds the five store files.
	DataDir string `yaml:"data_dir"`

	// SnapshotDir holds the exporter JSON snapshots consumed by the
	// migration pipeline.
	SnapshotDir string `yaml:"snapshot_dir"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is present: store
// files under the user config dir, snapshots alongside them.
func Default() Config {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	root := filepath.Join(base, "lewtnanny")
	return Config{
		DataDir:     filepath.Join(root, "data"),
		SnapshotDir: filepath.Join(root, "snapshots"),
		LogLevel:    "info",
	}
}

// Load reads a YAML config file, filling unset fields from Default. A
// missing file is not an error: it returns Default unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = Default().DataDir
	}
	if cfg.SnapshotDir == "" {
		cfg.SnapshotDir = Default().SnapshotDir
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

// SlogLevel maps the configured level name onto a slog level string
// understood by slog.Level.UnmarshalText. Unknown names fall back to
// info.
func (c Config) SlogLevel() string {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
		return c.LogLevel
	default:
		return "info"
	}
}
