// Package config loads the pmp settings: a YAML file, then environment
// overrides, then command line flags applied by the caller.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when none is given.
const DefaultPath = "pmp.yaml"

// Config is the top-level configuration of pmp.
type Config struct {
	BaseURL  string        `yaml:"base_url"`
	User     string        `yaml:"user"`
	Store    string        `yaml:"store"` // sqlite path, empty for none
	Listen   string        `yaml:"listen"`
	LogLevel string        `yaml:"log_level"`
	Timeout  time.Duration `yaml:"timeout"` // zero means none
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		BaseURL:  "http://localhost:5000",
		User:     "USR000001",
		Store:    "pmp.db",
		Listen:   ":8080",
		LogLevel: "info",
	}
}

// Load reads the YAML file at path over the defaults, then applies the
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", path, err)
		}
	}
	if err := applyEnvOverrides(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides overrides the fields whose PMP_ variable is set.
// PMP_STORE may be set to the empty string to disable the store.
func applyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup("PMP_BASE_URL"); ok && v != "" {
		cfg.BaseURL = v
	}
	if v, ok := lookup("PMP_USER"); ok && v != "" {
		cfg.User = v
	}
	if v, ok := lookup("PMP_STORE"); ok {
		cfg.Store = v
	}
	if v, ok := lookup("PMP_LISTEN"); ok && v != "" {
		cfg.Listen = v
	}
	if v, ok := lookup("PMP_LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup("PMP_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid PMP_TIMEOUT %q: %w", v, err)
		}
		cfg.Timeout = d
	}
	return nil
}

// NewLogger creates a text logger on w at level: "debug", "info", "warn" or
// "error". Unknown levels mean info.
func NewLogger(w io.Writer, level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}
