package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size" yaml:"max_size"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level" yaml:"level"`
	Path       string            `mapstructure:"path" yaml:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation" yaml:"rotation"`
	Components map[string]string `mapstructure:"components" yaml:"components"`
}

// HistoryConfig configures the operation history.
type HistoryConfig struct {
	Enabled       bool   `mapstructure:"enabled" yaml:"enabled"`
	Path          string `mapstructure:"path" yaml:"path"`
	RetentionDays int    `mapstructure:"retention_days" yaml:"retention_days"`
}

// LedgerConfig configures the processed-file ledger.
type LedgerConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// Config represents the application configuration.
type Config struct {
	Exclude []string      `mapstructure:"exclude" yaml:"exclude"`
	Output  string        `mapstructure:"output" yaml:"output"`
	History HistoryConfig `mapstructure:"history" yaml:"history"`
	Ledger  LedgerConfig  `mapstructure:"ledger" yaml:"ledger"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// Load reads configuration from config.yaml and ANONYMIZE_* environment
// variables. Search order:
//   - $XDG_CONFIG_HOME/anonymize/config.yaml
//   - $HOME/.config/anonymize/config.yaml
//
// A missing file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, appName))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", appName))

	v.SetEnvPrefix("ANONYMIZE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	historyDir, err := HistoryDir()
	if err != nil {
		return nil, err
	}

	v.SetDefault("exclude", DefaultExclusions)
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", historyDir)
	v.SetDefault("history.retention_days", DefaultRetentionDays)
	v.SetDefault("ledger.enabled", true)
	v.SetDefault("ledger.path", DefaultLedgerPath())
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.components", map[string]string{
		"manifest": "info",
		"runner":   "info",
		"ledger":   "warn",
		"history":  "warn",
		"cli":      "info",
	})

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for _, p := range []*string{&cfg.History.Path, &cfg.Ledger.Path, &cfg.Logging.Path} {
		if *p, err = ExpandPath(*p); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

// ConfigDir returns the configuration directory.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, appName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", appName), nil
}

// ConfigFile returns the path of the primary config file.
func ConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// HistoryDir returns the default operation history directory.
func HistoryDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".history"), nil
}

// DataDir returns $XDG_DATA_HOME/anonymize.
func DataDir() string {
	return filepath.Join(xdg.DataHome, appName)
}

// StateDir returns $XDG_STATE_HOME/anonymize.
func StateDir() string {
	return filepath.Join(xdg.StateHome, appName)
}

// DefaultLedgerPath returns the default badger directory for the ledger.
func DefaultLedgerPath() string {
	return filepath.Join(DataDir(), "ledger")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), "anonymize.log")
}

// WriteDefault writes a commented default config file and returns its path.
// An existing file is left untouched.
func WriteDefault() (string, error) {
	path, err := ConfigFile()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	historyDir, err := HistoryDir()
	if err != nil {
		return "", err
	}

	content := fmt.Sprintf(`# anonymize configuration

# Patterns (doublestar, relative to the search directory) skipped when
# locating files. Nothing is skipped by default, for example:
#   exclude:
#     - "**/.git"
exclude: []

# Default output format: pretty, plain, json, jsonl, yaml, csv, tsv, markdown, paths
output: %s

# Operation history
history:
  enabled: true
  path: %s
  retention_days: %d

# Record of every file anonymized, used to warn about repeated runs
ledger:
  enabled: true
  path: %s

logging:
  # debug, info, warn, error
  level: %s
  # Empty means $XDG_STATE_HOME/anonymize/anonymize.log
  path: ""
  rotation:
    max_size: 10MB
    max_age: 30
    max_backups: 5
  components:
    manifest: info
    runner: info
    ledger: warn
    history: warn
    cli: info
`, DefaultOutput, historyDir, DefaultRetentionDays, DefaultLedgerPath(), DefaultLogLevel)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write default config: %w", err)
	}

	return path, nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}
