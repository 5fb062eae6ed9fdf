// Package config defines impalab's process-wide defaults and the
// on-disk config file layout, following the teacher's convention of
// a Defaults()/Validate()/WriteDefaultConfig() trio bound through viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config holds orchestrator-wide settings that are not specific to a
// single run: where the manifest lives by default and how verbose
// logging should be absent an explicit environment override.
type Config struct {
	ManifestPath string `mapstructure:"manifest_path"`
	LogLevel     string `mapstructure:"log_level"`
}

// Defaults returns impalab's built-in configuration.
func Defaults() Config {
	return Config{
		ManifestPath: "impa_manifest.yaml",
		LogLevel:     "info",
	}
}

// Validate checks that cfg is usable, returning a descriptive error
// for the first invariant it finds violated.
func Validate(cfg Config) error {
	if cfg.ManifestPath == "" {
		return fmt.Errorf("config: manifest_path must not be empty")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log_level %q is not one of debug, info, warn, error", cfg.LogLevel)
	}
	return nil
}

// DefaultConfigTemplate returns a commented YAML document describing
// every recognized key, written out the first time impalab runs
// without a config file.
func DefaultConfigTemplate() string {
	d := Defaults()
	return fmt.Sprintf(`# impalab configuration
#
# manifest_path: default location of the component manifest consulted
# by "impalab run" when --manifest-path is not given.
manifest_path: %s

# log_level: default verbosity when IMPALAB_LOG is not set.
# One of: debug, info, warn, error.
log_level: %s
`, d.ManifestPath, d.LogLevel)
}

// WriteDefaultConfig writes the default config template to path,
// creating parent directories as needed. It does not overwrite an
// existing file.
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(DefaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("config: write default config to %s: %w", path, err)
	}
	return nil
}
