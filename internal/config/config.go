// Package config provides configuration management for rolefix using Viper
// for flexible loading from files, environment variables, and command-line
// flags.
//
// The configuration system supports YAML files and environment variable
// overrides with a ROLEFIX_ prefix. It manages the namespace layout, rewrite
// exclusions, backup behavior, logging, and watch-mode settings.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Namespace NamespaceConfig `yaml:"namespace"`
	Rewrite   RewriteConfig   `yaml:"rewrite"`
	Backup    BackupConfig    `yaml:"backup"`
	Log       LogConfig       `yaml:"log"`
	Watch     WatchConfig     `yaml:"watch"`
	Root      string          `yaml:"-"` // CLI argument, not from config file
	DryRun    bool            `yaml:"-"` // CLI flag, not from config file
}

type NamespaceConfig struct {
	Dir string `yaml:"dir"`
}

type RewriteConfig struct {
	SkipDirs  []string `yaml:"skip_dirs"`
	CacheSize int      `yaml:"cache_size"`
}

type BackupConfig struct {
	Enabled bool `yaml:"enabled"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type WatchConfig struct {
	DebounceMs int      `yaml:"debounce_ms"`
	Exclude    []string `yaml:"exclude"`
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Handle skip_dirs set via viper (workaround for viper slice handling)
	if viper.IsSet("rewrite.skip_dirs") && len(config.Rewrite.SkipDirs) == 0 {
		skipDirs := viper.GetStringSlice("rewrite.skip_dirs")
		if len(skipDirs) > 0 {
			config.Rewrite.SkipDirs = skipDirs
		}
	}
	if viper.IsSet("watch.exclude") && len(config.Watch.Exclude) == 0 {
		exclude := viper.GetStringSlice("watch.exclude")
		if len(exclude) > 0 {
			config.Watch.Exclude = exclude
		}
	}

	// Handle backup toggle set via viper (workaround for viper bool handling)
	if viper.IsSet("backup.enabled") {
		config.Backup.Enabled = viper.GetBool("backup.enabled")
	} else {
		config.Backup.Enabled = true
	}
	if viper.IsSet("dry-run") {
		config.DryRun = viper.GetBool("dry-run")
	}

	// Apply default values if not set
	if config.Namespace.Dir == "" {
		config.Namespace.Dir = "roles"
	}
	if len(config.Rewrite.SkipDirs) == 0 {
		config.Rewrite.SkipDirs = []string{"tests", "files", "templates", "library"}
	}
	if config.Rewrite.CacheSize == 0 {
		config.Rewrite.CacheSize = 512
	}
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}
	if config.Watch.DebounceMs == 0 {
		config.Watch.DebounceMs = 300
	}
	if len(config.Watch.Exclude) == 0 {
		config.Watch.Exclude = []string{".git", "node_modules"}
	}

	// Validate configuration values
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// NamespacePath resolves the namespace directory against the root. An
// absolute configured dir is taken as-is.
func (c *Config) NamespacePath() string {
	if filepath.IsAbs(c.Namespace.Dir) {
		return c.Namespace.Dir
	}
	return filepath.Join(c.Root, c.Namespace.Dir)
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateNamespaceConfig(&config.Namespace); err != nil {
		return fmt.Errorf("namespace config: %w", err)
	}

	if err := validateRewriteConfig(&config.Rewrite); err != nil {
		return fmt.Errorf("rewrite config: %w", err)
	}

	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}

	if config.Watch.DebounceMs < 0 {
		return fmt.Errorf("watch config: debounce_ms must not be negative")
	}

	return nil
}

// validateNamespaceConfig validates the namespace directory setting
func validateNamespaceConfig(config *NamespaceConfig) error {
	return validatePath(config.Dir)
}

// validateRewriteConfig validates rewrite configuration values
func validateRewriteConfig(config *RewriteConfig) error {
	if config.CacheSize < 1 {
		return fmt.Errorf("cache_size must be positive, got %d", config.CacheSize)
	}
	for _, dir := range config.SkipDirs {
		if dir == "" || strings.ContainsAny(dir, "/\\") {
			return fmt.Errorf("skip_dirs entries must be bare directory names, got '%s'", dir)
		}
	}
	return nil
}

// validateLogConfig validates logging configuration values
func validateLogConfig(config *LogConfig) error {
	switch strings.ToLower(config.Level) {
	case "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return fmt.Errorf("unknown log level '%s'", config.Level)
	}
	if config.Format != "text" && config.Format != "json" {
		return fmt.Errorf("format must be 'text' or 'json', got '%s'", config.Format)
	}
	return nil
}

// validatePath validates a configured path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	// Clean the path
	cleanPath := filepath.Clean(path)

	// Reject path traversal attempts
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	// Reject dangerous characters
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
