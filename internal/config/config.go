// Package config loads qperformance settings from defaults, an optional
// YAML file and QPERF_* environment variables, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/qperformance/internal/qtype"
)

// Config holds all qperformance configuration.
type Config struct {
	Engine EngineConfig `yaml:"engine"`

	// DBPath is the run history database. Empty means the default XDG path.
	DBPath string `yaml:"db,omitempty"`

	// History enables recording of every run. Default: true.
	History bool `yaml:"history"`

	// LogLevel is one of debug, info, warn, error. Default: warn.
	LogLevel string `yaml:"log_level"`

	// Types is the default question-type selection, e.g. "AGIQRSXVM".
	Types string `yaml:"types"`
}

// EngineConfig describes how to reach the analysis engine.
type EngineConfig struct {
	// Command is the engine executable followed by fixed arguments.
	Command []string `yaml:"command"`

	// Env is appended to the engine's environment.
	Env []string `yaml:"env,omitempty"`

	// Timeout bounds one analysis. Zero means no limit.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Engine: EngineConfig{
			Command: []string{"qperf"},
		},
		History:  true,
		LogLevel: "warn",
		Types:    qtype.AllToggles().String(),
	}
}

// LoadDotEnv loads a .env file from the working directory if present.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// DefaultPath returns $XDG_CONFIG_HOME/qperformance/config.yaml, falling
// back to ~/.config.
func DefaultPath() (string, error) {
	cfgHome := os.Getenv("XDG_CONFIG_HOME")
	if cfgHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		cfgHome = filepath.Join(home, ".config")
	}
	return filepath.Join(cfgHome, "qperformance", "config.yaml"), nil
}

// Load builds a Config. An explicit path (or QPERF_CONFIG) must exist;
// the default path is read only when present. Environment variables
// override file values. The result is validated.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv("QPERF_CONFIG")
	}
	required := path != ""
	if !required {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if cfg, err = Parse(data, cfg); err != nil {
				return Config{}, fmt.Errorf("config %s: %w", path, err)
			}
		case required || !errors.Is(err, os.ErrNotExist):
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	cfg.Types, _ = qtype.Normalize(cfg.Types)
	return cfg, nil
}

// Parse decodes YAML over base. Unknown keys are rejected.
func Parse(data []byte, base Config) (Config, error) {
	cfg := base
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return base, nil
		}
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("QPERF_ENGINE_CMD"); v != "" {
		cfg.Engine.Command = strings.Fields(v)
	}
	if v := os.Getenv("QPERF_ENGINE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("QPERF_ENGINE_TIMEOUT: %w", err)
		}
		cfg.Engine.Timeout = d
	}
	if v := os.Getenv("QPERF_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("QPERF_HISTORY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("QPERF_HISTORY: %w", err)
		}
		cfg.History = b
	}
	if v := os.Getenv("QPERF_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("QPERF_TYPES"); ok {
		cfg.Types = v
	}
	return nil
}

// Validate checks the engine command, log level and default types.
func (c Config) Validate() error {
	if len(c.Engine.Command) == 0 || strings.TrimSpace(c.Engine.Command[0]) == "" {
		return errors.New("engine.command is required (set it in the config file or QPERF_ENGINE_CMD)")
	}
	if c.Engine.Timeout < 0 {
		return fmt.Errorf("engine.timeout must not be negative, got %s", c.Engine.Timeout)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := qtype.ParseToggles(c.Types); err != nil {
		return fmt.Errorf("types: %w", err)
	}
	return nil
}

// DefaultToggles returns the configured default selection.
func (c Config) DefaultToggles() qtype.Toggles {
	t, err := qtype.ParseToggles(c.Types)
	if err != nil {
		return qtype.AllToggles()
	}
	return t
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
