package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/anonymize/pkg/anonymize/config"
	"github.com/jamesainslie/anonymize/pkg/anonymize/logging"
	"github.com/jamesainslie/anonymize/pkg/anonymize/types"
)

var logger = logging.Get("cli")

// initializeLogging creates the application directories and starts file
// logging. It runs before every command.
func initializeLogging(_ *cobra.Command, _ []string) error {
	configDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	for _, dir := range []string{configDir, config.DataDir(), config.StateDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		// Fall back to defaults so a broken config file still leaves a log.
		printError("failed to load configuration: %v", err)
		cfg = &config.Config{Logging: config.LoggingConfig{Level: config.DefaultLogLevel}}
	}

	logCfg := logging.Config{
		Level:      cfg.Logging.Level,
		Path:       cfg.Logging.Path,
		Rotation:   parseRotationConfig(cfg.Logging.Rotation),
		Components: cfg.Logging.Components,
	}
	if logCfg.Path == "" {
		logCfg.Path = config.DefaultLogPath()
	}
	if getVerbose() {
		logCfg.ConsoleLevel = "debug"
	}

	if err := logging.Init(logCfg); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	return nil
}

func closeLogging() {
	_ = logging.Close()
}

// parseRotationConfig converts the configured rotation settings. An empty
// or invalid max_size falls back to 10MB.
func parseRotationConfig(cfg config.RotationConfig) logging.RotationConfig {
	out := logging.RotationConfig{
		MaxSize:    logging.DefaultRotationConfig().MaxSize,
		MaxAge:     cfg.MaxAge,
		MaxBackups: cfg.MaxBackups,
	}

	if cfg.MaxSize != "" {
		size, err := types.ParseSize(cfg.MaxSize)
		if err == nil && size > 0 {
			out.MaxSize = size
		}
	}
	return out
}
