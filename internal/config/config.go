// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (WORKBENCH_* prefix, runtime override)
//  2. Config file (~/.workbench/config.yaml or ./config.yaml)
//  3. Default values
//
// Main categories:
//   - Workspace: the sandbox root every path argument is resolved against
//   - Dispatch: per-call timeout applied to every tool invocation
//   - Limits: size caps for reads, listings, and batch operations
//   - Docker: daemon access toggle
//   - Log: level and format
//
// The sandbox root is security-relevant: when sandboxing is enabled and no
// root is configured, every path is denied (fail-safe). Permissive mode must
// be requested explicitly with sandbox.enabled = false.
//
// Error handling uses sentinel errors so callers can branch with errors.Is().
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidRoot indicates the workspace root is not an absolute path
	// or does not exist.
	ErrInvalidRoot = errors.New("invalid workspace root")

	// ErrInvalidTimeout indicates the dispatch timeout is out of range.
	ErrInvalidTimeout = errors.New("invalid dispatch timeout")

	// ErrInvalidLimit indicates a size limit is out of range.
	ErrInvalidLimit = errors.New("invalid limit")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Timeout bounds for a single dispatched operation.
const (
	MinDispatchTimeout = 1 * time.Second
	MaxDispatchTimeout = 10 * time.Minute
)

// Config stores the application configuration.
type Config struct {
	Workspace WorkspaceConfig `mapstructure:"workspace"`
	Sandbox   SandboxConfig   `mapstructure:"sandbox"`
	Dispatch  DispatchConfig  `mapstructure:"dispatch"`
	Limits    LimitsConfig    `mapstructure:"limits"`
	Docker    DockerConfig    `mapstructure:"docker"`
	Log       LogConfig       `mapstructure:"log"`
}

// WorkspaceConfig locates the directory tool calls are allowed to touch.
type WorkspaceConfig struct {
	// Root is the directory that path arguments are resolved against.
	// Empty with sandboxing enabled means deny all paths.
	Root string `mapstructure:"root"`
}

// SandboxConfig controls path containment.
type SandboxConfig struct {
	// Enabled turns on root containment for path arguments.
	// Disabling it accepts any path as-is; this is an explicit opt-out,
	// logged at startup, never a silent fallback.
	Enabled bool `mapstructure:"enabled"`
}

// DispatchConfig bounds individual tool calls.
type DispatchConfig struct {
	// Timeout applies to each dispatched operation. Handlers receive a
	// context cancelled at the deadline.
	Timeout time.Duration `mapstructure:"timeout"`
}

// LimitsConfig caps result sizes so one call cannot exhaust memory.
type LimitsConfig struct {
	// MaxReadBytes is the largest file read_file will return.
	MaxReadBytes int64 `mapstructure:"max_read_bytes"`

	// MaxBatchFiles caps the file_paths list of read_multiple_files.
	MaxBatchFiles int `mapstructure:"max_batch_files"`

	// MaxListEntries caps directory listings and search results.
	MaxListEntries int `mapstructure:"max_list_entries"`
}

// DockerConfig controls access to the container daemon.
type DockerConfig struct {
	// Enabled connects a client to the daemon at startup. When false,
	// docker_ops operations stay registered but report UNAVAILABLE.
	Enabled bool `mapstructure:"enabled"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Default returns a configuration populated with the built-in defaults,
// bypassing file and environment sources. Mostly useful for tests and
// embedding.
func Default() *Config {
	return &Config{
		Sandbox:  SandboxConfig{Enabled: true},
		Dispatch: DispatchConfig{Timeout: 30 * time.Second},
		Limits: LimitsConfig{
			MaxReadBytes:   10 * 1024 * 1024,
			MaxBatchFiles:  100,
			MaxListEntries: 1000,
		},
		Docker: DockerConfig{Enabled: true},
		Log:    LogConfig{Level: "info"},
	}
}

// Load loads configuration with priority: env > file > defaults.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".workbench")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvPrefix("WORKBENCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("workspace.root", "")
	v.SetDefault("sandbox.enabled", true)
	v.SetDefault("dispatch.timeout", "30s")
	v.SetDefault("limits.max_read_bytes", int64(10*1024*1024))
	v.SetDefault("limits.max_batch_files", 100)
	v.SetDefault("limits.max_list_entries", 1000)
	v.SetDefault("docker.enabled", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}

// Validate checks every field against its allowed range. Fail-fast: called
// from Load before any component sees the config.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if c.Workspace.Root != "" {
		if !filepath.IsAbs(c.Workspace.Root) {
			return fmt.Errorf("%w: %q is not absolute", ErrInvalidRoot, c.Workspace.Root)
		}
		info, err := os.Stat(c.Workspace.Root)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRoot, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%w: %q is not a directory", ErrInvalidRoot, c.Workspace.Root)
		}
	}

	if c.Dispatch.Timeout < MinDispatchTimeout || c.Dispatch.Timeout > MaxDispatchTimeout {
		return fmt.Errorf("%w: %s (allowed %s..%s)",
			ErrInvalidTimeout, c.Dispatch.Timeout, MinDispatchTimeout, MaxDispatchTimeout)
	}

	if c.Limits.MaxReadBytes <= 0 {
		return fmt.Errorf("%w: max_read_bytes must be positive", ErrInvalidLimit)
	}
	if c.Limits.MaxBatchFiles <= 0 {
		return fmt.Errorf("%w: max_batch_files must be positive", ErrInvalidLimit)
	}
	if c.Limits.MaxListEntries <= 0 {
		return fmt.Errorf("%w: max_list_entries must be positive", ErrInvalidLimit)
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}

	return nil
}
